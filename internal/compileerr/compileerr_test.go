package compileerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	e := Arityf("operator %s expected 2 parameters", "==")
	assert.Equal(t, "arity error: operator == expected 2 parameters", e.Error())
}

func TestWrapCarriesCause(t *testing.T) {
	cause := errors.New("file not found")
	e := IOf(cause, "reading %s", "main.w")
	assert.Contains(t, e.Error(), "I/O error")
	assert.Contains(t, e.Error(), "file not found")
	assert.NotNil(t, errors.Unwrap(e))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "parse error", Parse.String())
	assert.Equal(t, "unknown identifier", UnknownIdentifier.String())
	assert.Equal(t, "misuse", Misuse.String())
}
