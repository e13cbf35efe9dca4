package model

import (
	"fmt"
	"strings"
)

// Role is a coarse permission tag. The string value is what ends up inside issued tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// DefaultRole is assigned to every newly registered credential.
const DefaultRole = RoleUser

type roleInfo struct {
	name      string
	authority string
}

var roleTable = map[Role]roleInfo{
	RoleAdmin: {name: "Administrator", authority: "ROLE_ADMIN"},
	RoleUser:  {name: "User", authority: "ROLE_USER"},
}

// ParseRole accepts a role name case-insensitively, with or without the ROLE_ prefix.
func ParseRole(s string) (Role, error) {
	candidate := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	if _, ok := roleTable[candidate]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return candidate, nil
}

// ParseRoles parses every entry and deduplicates the result.
func ParseRoles(values []string) ([]Role, error) {
	roles := make([]Role, 0, len(values))
	seen := make(map[Role]struct{}, len(values))
	for _, v := range values {
		r, err := ParseRole(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	return roles, nil
}

// RoleName returns the human readable name of a role.
func RoleName(r Role) string {
	if info, ok := roleTable[r]; ok {
		return info.name
	}
	return string(r)
}

// RoleAuthority returns the legacy authority string (e.g. ROLE_ADMIN).
func RoleAuthority(r Role) string {
	if info, ok := roleTable[r]; ok {
		return info.authority
	}
	return "ROLE_" + string(r)
}

func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
