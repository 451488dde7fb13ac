package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionError(t *testing.T) {
	err := NewResolutionError("/src/main.js", "./missing", nil)

	assert.Equal(t, ErrorTypeResolution, err.Type)
	assert.Equal(t, "/src/main.js", err.Module)
	assert.Equal(t, "./missing", err.Specifier)
	assert.Contains(t, err.Error(), "./missing")
	assert.Contains(t, err.Error(), "/src/main.js")
	assert.True(t, IsResolutionError(err))
	assert.False(t, IsSyntaxError(err))
}

func TestSyntaxError(t *testing.T) {
	err := NewSyntaxError("/src/game.js", "import from './oops'").WithLine(3)

	assert.Equal(t, ErrorTypeSyntax, err.Type)
	assert.Equal(t, 3, err.Line)
	assert.Contains(t, err.Error(), "/src/game.js:3")
	assert.Contains(t, err.Error(), "import from './oops'")
	assert.True(t, IsSyntaxError(err))
}

func TestCycleError(t *testing.T) {
	err := NewCycleError([]string{"/src/a.js", "/src/b.js"})

	assert.True(t, IsCycleError(err))
	assert.Equal(t, []string{"/src/a.js", "/src/b.js"}, err.Members)
	assert.Contains(t, err.Error(), "/src/a.js -> /src/b.js")
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("stat failed")
	err := NewResolutionError("/src/main.js", "./x", cause)

	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.Contains(t, err.Error(), "stat failed")
}

func TestErrorIs(t *testing.T) {
	a := NewResolutionError("/src/main.js", "./x", nil)
	b := NewResolutionError("/src/other.js", "./y", nil)
	c := NewSyntaxError("/src/main.js", "export")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestPredicatesOnWrappedErrors(t *testing.T) {
	inner := NewCycleError([]string{"/a.js", "/b.js"})
	wrapped := fmt.Errorf("build failed: %w", inner)

	assert.True(t, IsCycleError(wrapped))
	assert.False(t, IsResolutionError(wrapped))
}

func TestPredicatesOnPlainErrors(t *testing.T) {
	plain := stderrors.New("boom")

	assert.False(t, IsResolutionError(plain))
	assert.False(t, IsSyntaxError(plain))
	assert.False(t, IsCycleError(plain))
}
