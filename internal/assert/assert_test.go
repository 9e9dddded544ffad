package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLength(t *testing.T) {
	require.NotPanics(t, func() { Length("123456", 6) })
	require.PanicsWithValue(t, "assert.Length expected 6 actual 5", func() { Length("12345", 6) })
}

func TestOneOf(t *testing.T) {
	require.NotPanics(t, func() { OneOf("sold", "active", "sold") })
	require.Panics(t, func() { OneOf("archived", "active", "sold") })
}
