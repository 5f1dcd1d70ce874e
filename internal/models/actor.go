package models

import (
	"slices"

	"github.com/google/uuid"
)

const (
	RoleAliado = "ALIADO"
	RoleAdmin  = "ADMIN"
	RoleRoot   = "ROOT"
)

// Actor is the authenticated caller as resolved from the request token.
type Actor struct {
	ID     uuid.UUID
	Roles  []string
	AllyID *uuid.UUID
}

func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// IsStaff reports whether the actor may perform review actions.
func (a Actor) IsStaff() bool {
	return a.HasRole(RoleAdmin) || a.HasRole(RoleRoot)
}
