// Package models defines the client-side session data: the user profile,
// the patch applied to it and the opaque auth credential.
package models

// DefaultAvatar marks a profile that has no uploaded photo; UIs render
// their bundled placeholder for it.
const DefaultAvatar = "default"

// UserProfile is the identity record of the signed-in user.
// ID is assigned by the server and never changes.
type UserProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// IsEmpty reports whether p carries no identity.
func (p *UserProfile) IsEmpty() bool {
	return p == nil || p.ID == ""
}

// Clone returns an independent copy of p.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// AvatarOrDefault returns the avatar reference, falling back to DefaultAvatar.
func (p *UserProfile) AvatarOrDefault() string {
	if p == nil || p.Avatar == "" {
		return DefaultAvatar
	}
	return p.Avatar
}

// ProfilePatch describes a profile update. Nil fields are left untouched.
// Password and OldPassword are only forwarded to the server; they are never
// merged into a UserProfile.
type ProfilePatch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Password    *string `json:"password,omitempty"`
	OldPassword *string `json:"old_password,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (pp *ProfilePatch) IsEmpty() bool {
	return pp == nil || (pp.Name == nil && pp.Email == nil && pp.Avatar == nil &&
		pp.Password == nil && pp.OldPassword == nil)
}

// ApplyTo returns a copy of p with the patch merged in. The ID is kept.
func (pp *ProfilePatch) ApplyTo(p *UserProfile) *UserProfile {
	merged := p.Clone()
	if merged == nil || pp == nil {
		return merged
	}
	if pp.Name != nil {
		merged.Name = *pp.Name
	}
	if pp.Email != nil {
		merged.Email = *pp.Email
	}
	if pp.Avatar != nil {
		merged.Avatar = *pp.Avatar
	}
	return merged
}

// AuthCredential is the opaque bearer token issued at sign-in.
type AuthCredential string

func (c AuthCredential) IsEmpty() bool {
	return c == ""
}

// String hides the token so credentials never end up in logs.
func (c AuthCredential) String() string {
	if c == "" {
		return ""
	}
	return "[redacted]"
}

// SignInResult is what the remote-auth endpoint hands back on success.
type SignInResult struct {
	User  *UserProfile
	Token AuthCredential
}
