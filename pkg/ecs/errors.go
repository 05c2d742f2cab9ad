package ecs

import "fmt"

// Kind identifies the taxonomy of ECS-level failures named in spec.md §7.
type Kind string

const (
	KindInvalidEntity      Kind = "EcsInvalidEntity"
	KindDuplicateSystem    Kind = "EcsDuplicateSystem"
	KindInvalidSystem      Kind = "EcsInvalidSystem"
	KindComponentAccess    Kind = "EcsComponentAccessError"
	KindMissingSignature   Kind = "EcsMissingSignature"
)

// Error is the ECS substrate's error type. It carries a Kind so callers
// can branch on the taxonomy with errors.As instead of string matching.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errInvalidEntity(id EntityID) *Error {
	return newError(KindInvalidEntity, "entity %d is not alive", id)
}

func errDuplicateSystem(name string) *Error {
	return newError(KindDuplicateSystem, "system %q already registered", name)
}

func errInvalidSystem(name string) *Error {
	return newError(KindInvalidSystem, "system %q is not registered", name)
}

func errComponentAccess(t ComponentTypeID) *Error {
	return newError(KindComponentAccess, "component type %d is not registered", t)
}

func errMissingSignature(name string) *Error {
	return newError(KindMissingSignature, "system %q has no required signature", name)
}
