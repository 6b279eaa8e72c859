// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for structural invariant violations. Every typed error in
// this file matches ErrStructural and its own sentinel under errors.Is.
var (
	// ErrStructural matches any structural failure.
	ErrStructural = errors.New("assemble: structural invariant violated")

	// ErrDanglingReference is returned when a relationship names an entity
	// that is not in the final entity set.
	ErrDanglingReference = errors.New("assemble: dangling relationship reference")

	// ErrNameCollision is returned when two phrasings of one canonical name
	// declare conflicting fields.
	ErrNameCollision = errors.New("assemble: entity name collision")

	// ErrMissingIdentifier is returned when an entity has no id field.
	ErrMissingIdentifier = errors.New("assemble: entity without identifier")
)

// StructuralError is implemented by every hard assembly failure. Callers
// report Kind and Names to the user and abort generation.
type StructuralError interface {
	error
	Kind() string
	Names() []string
}

// DanglingReferenceError reports an edge whose endpoint never became an entity.
type DanglingReferenceError struct {
	Source  string
	Target  string
	Missing string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("assemble: relationship %s -> %s references unknown entity %s", e.Source, e.Target, e.Missing)
}

// Is reports whether target is ErrDanglingReference or ErrStructural.
func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference || target == ErrStructural
}

// Kind returns "dangling_reference".
func (e *DanglingReferenceError) Kind() string { return "dangling_reference" }

// Names returns the edge endpoints.
func (e *DanglingReferenceError) Names() []string { return []string{e.Source, e.Target} }

// NameCollisionError reports two literal forms of one canonical entity name
// that declare the same field differently.
type NameCollisionError struct {
	Name  string
	Forms []string
	Field string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("assemble: entity %s is written as %s with conflicting definitions of field %q",
		e.Name, strings.Join(quoteAll(e.Forms), " and "), e.Field)
}

// Is reports whether target is ErrNameCollision or ErrStructural.
func (e *NameCollisionError) Is(target error) bool {
	return target == ErrNameCollision || target == ErrStructural
}

// Kind returns "name_collision".
func (e *NameCollisionError) Kind() string { return "name_collision" }

// Names returns the canonical name followed by the colliding forms.
func (e *NameCollisionError) Names() []string { return append([]string{e.Name}, e.Forms...) }

// MissingIdentifierError reports an entity without an id field.
type MissingIdentifierError struct {
	Entity string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("assemble: entity %s has no id field", e.Entity)
}

// Is reports whether target is ErrMissingIdentifier or ErrStructural.
func (e *MissingIdentifierError) Is(target error) bool {
	return target == ErrMissingIdentifier || target == ErrStructural
}

// Kind returns "missing_identifier".
func (e *MissingIdentifierError) Kind() string { return "missing_identifier" }

// Names returns the entity name.
func (e *MissingIdentifierError) Names() []string { return []string{e.Entity} }

// IsStructural reports whether err is a structural assembly failure.
func IsStructural(err error) bool {
	if err == nil {
		return false
	}
	var se StructuralError
	return errors.As(err, &se) || errors.Is(err, ErrStructural)
}

// AsStructural extracts the StructuralError from err's chain.
func AsStructural(err error) (StructuralError, bool) {
	var se StructuralError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
