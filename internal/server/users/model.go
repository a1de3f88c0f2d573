package users

import "time"

type User struct {
	ID        string
	Name      string
	Email     string
	Avatar    string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Salt = append([]byte(nil), u.Salt...)
	c.Verifier = append([]byte(nil), u.Verifier...)
	return &c
}

// UpdateInput is a partial user update. Nil fields are left untouched.
// Password requires OldPassword to match the current one.
type UpdateInput struct {
	Name        *string
	Email       *string
	Avatar      *string
	Password    *string
	OldPassword *string
}
