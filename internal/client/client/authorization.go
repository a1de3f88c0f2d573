package client

import (
	"sync"

	"github.com/dmitrijs2005/gymsession/internal/common"
)

// Authorization is the single default-credential slot of the outbound
// client. The zero value is an empty slot.
type Authorization struct {
	mu    sync.RWMutex
	token string
}

func (a *Authorization) Set(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *Authorization) Clear() {
	a.Set("")
}

func (a *Authorization) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// Header returns the authorization header value, "" when the slot is empty.
func (a *Authorization) Header() string {
	token := a.Token()
	if token == "" {
		return ""
	}
	return common.BearerScheme + " " + token
}
