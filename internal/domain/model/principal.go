package model

import "time"

// Principal is the identity making one request. It is projected from a verified token
// and never persisted. The zero value is not a valid principal; use NewPrincipal.
type Principal struct {
	id       int64
	username string
	roles    []Role
	active   bool
}

func NewPrincipal(id int64, username string, roles []Role, active bool) *Principal {
	return &Principal{
		id:       id,
		username: username,
		roles:    append([]Role(nil), roles...),
		active:   active,
	}
}

func (p *Principal) ID() int64        { return p.id }
func (p *Principal) Username() string { return p.username }
func (p *Principal) Active() bool     { return p.active }

// Roles returns a copy; callers cannot mutate the principal through it.
func (p *Principal) Roles() []Role {
	return append([]Role(nil), p.roles...)
}

func (p *Principal) HasRole(r Role) bool {
	return HasRole(p.roles, r)
}

func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// Token is a verified (or freshly issued) bearer credential. The signature is part of Raw.
type Token struct {
	ID        string    `json:"-"`
	SubjectID int64     `json:"-"`
	Username  string    `json:"-"`
	Roles     []Role    `json:"-"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
	Raw       string    `json:"-"`
}

// Principal projects the token into a request principal. Tokens are only ever
// issued to active credentials, so the projection is active.
func (t *Token) Principal() *Principal {
	return NewPrincipal(t.SubjectID, t.Username, t.Roles, true)
}
