package session

import "github.com/dmitrijs2005/gymsession/internal/client/models"

// State tags the session lifecycle.
type State int

const (
	Unauthenticated State = iota
	Restoring
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// View is the read model published to observers. Profile is nil unless
// State is Authenticated, and is always a private copy.
type View struct {
	State   State
	Profile *models.UserProfile
}

func (v View) IsAuthenticated() bool {
	return v.State == Authenticated
}
