package core

import (
	"fmt"
	"reflect"
)

// Validate checks that capability satisfies marker and that implementation
// can be used wherever capability is expected. A nil marker skips the first
// check.
func Validate(marker, capability, implementation reflect.Type) error {
	fail := func(reason string) error {
		return &InvalidTypeRelationshipError{
			Capability:     typeString(capability),
			Implementation: typeString(implementation),
			Reason:         reason,
		}
	}

	switch {
	case capability == nil:
		return fail("capability type is nil")
	case implementation == nil:
		return fail("implementation type is nil")
	case marker != nil && !capability.Implements(marker):
		return fail(fmt.Sprintf("%s does not satisfy %s", capability, marker))
	case !implementation.AssignableTo(capability):
		return fail(fmt.Sprintf("%s does not implement %s", implementation, capability))
	}
	return nil
}

// ValidateService validates a service registration.
func ValidateService(capability, implementation reflect.Type) error {
	return Validate(serviceMarker, capability, implementation)
}

// ValidateContainer validates a service container registration.
func ValidateContainer(capability, implementation reflect.Type) error {
	return Validate(containerMarker, capability, implementation)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
