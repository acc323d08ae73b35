// Package questionbank loads and serves the immutable role/type question catalog.
package questionbank

import (
	"errors"
	"fmt"
	"slices"
)

// Role names the position a candidate is interviewing for.
type Role string

// InterviewType names the interview style (Technical, Behavioral, ...).
type InterviewType string

var (
	// ErrUnknownRole indicates a role outside the bank's enumeration.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownType indicates an interview type outside the bank's enumeration.
	ErrUnknownType = errors.New("unknown interview type")
)

// Bank is an immutable role -> interview type -> ordered questions catalog.
//
// Combos that the bank enumerates but carries no questions for yield an empty list.
type Bank struct {
	roles     []Role
	types     []InterviewType
	questions map[Role]map[InterviewType][]string
}

// Roles returns the enumerated roles in declaration order.
func (b *Bank) Roles() []Role {
	return slices.Clone(b.roles)
}

// Types returns the enumerated interview types in declaration order.
func (b *Bank) Types() []InterviewType {
	return slices.Clone(b.types)
}

// HasRole reports whether role is part of the enumeration.
func (b *Bank) HasRole(role Role) bool {
	return slices.Contains(b.roles, role)
}

// HasType reports whether kind is part of the enumeration.
func (b *Bank) HasType(kind InterviewType) bool {
	return slices.Contains(b.types, kind)
}

// Questions returns a copy of the ordered question list for one combo.
func (b *Bank) Questions(role Role, kind InterviewType) ([]string, error) {
	if !b.HasRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if !b.HasType(kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	return slices.Clone(b.questions[role][kind]), nil
}

// Count returns the number of questions for one combo, zero when unknown.
func (b *Bank) Count(role Role, kind InterviewType) int {
	return len(b.questions[role][kind])
}

// Total returns the number of questions across every combo.
func (b *Bank) Total() int {
	total := 0
	for _, byType := range b.questions {
		for _, list := range byType {
			total += len(list)
		}
	}
	return total
}
