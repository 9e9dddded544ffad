// Package assert holds invariant checks that panic. They guard values the
// program generated itself, never user input.
package assert

import (
	"fmt"
	"slices"
)

// Length panics unless value has exactly expected bytes
func Length(value string, expected int) {
	if len(value) != expected {
		panic(fmt.Sprintf("assert.Length expected %d actual %d", expected, len(value)))
	}
}

// OneOf panics unless value is one of allowed
func OneOf(value string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		panic(fmt.Sprintf("assert.OneOf %q not in %v", value, allowed))
	}
}
