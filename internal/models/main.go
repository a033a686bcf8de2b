// Package models defines the core data structures for accounts and
// their persisted metadata.
package models

// Account identifies a registered account within the host account
// manager.
type Account struct {
	// Name is the user-visible label, unique within Type.
	Name string
	// Type is the account type of the owning authenticator.
	Type string
}

// UserData is the short string key/value metadata persisted with an
// account. Every account carries at least its stable UUID entry.
type UserData map[string]string

// Clone returns a copy of the userdata so callers cannot mutate the
// stored mapping.
func (u UserData) Clone() UserData {
	if u == nil {
		return nil
	}
	c := make(UserData, len(u))
	for k, v := range u {
		c[k] = v
	}
	return c
}
