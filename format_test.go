package unversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Substitutes(t *testing.T) {
	t.Parallel()
	got := Format("Hello {name}!", map[string]any{"name": "Alice"})
	assert.Equal(t, "Hello Alice!", got)
}

func TestFormat_UnboundPlaceholderLeftVerbatim(t *testing.T) {
	t.Parallel()
	got := Format("Hello {name}!", map[string]any{"other": "x"})
	assert.Equal(t, "Hello {name}!", got)
}

func TestFormat_EmptyBindingsReturnsInput(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Hello {name}!", Format("Hello {name}!", nil))
	assert.Equal(t, "Hello {name}!", Format("Hello {name}!", map[string]any{}))
}

func TestFormat_RepeatedPlaceholder(t *testing.T) {
	t.Parallel()
	got := Format("{x} and {x} and {x}", map[string]any{"x": "y"})
	assert.Equal(t, "y and y and y", got)
}

func TestFormat_MultipleBindings(t *testing.T) {
	t.Parallel()
	got := Format("{greeting}, {name}. Welcome to {app}.", map[string]any{
		"greeting": "Hi",
		"name":     "Bo",
		"app":      "unversion",
	})
	assert.Equal(t, "Hi, Bo. Welcome to unversion.", got)
}

func TestFormat_NonStringValues(t *testing.T) {
	t.Parallel()
	got := Format("count={n} ok={ok} ratio={r}", map[string]any{"n": 3, "ok": true, "r": 0.5})
	assert.Equal(t, "count=3 ok=true ratio=0.5", got)
}

func TestFormat_MalformedBracesLeftVerbatim(t *testing.T) {
	t.Parallel()
	bindings := map[string]any{"name": "Bo"}
	assert.Equal(t, "open { brace", Format("open { brace", bindings))
	assert.Equal(t, "trailing {", Format("trailing {", bindings))
	assert.Equal(t, "{not closed", Format("{not closed", bindings))
	assert.Equal(t, "{with space}", Format("{with space}", bindings))
	assert.Equal(t, "empty {}", Format("empty {}", bindings))
}

func TestFormat_BraceBeforePlaceholder(t *testing.T) {
	t.Parallel()
	// the stray opening brace must not swallow the real placeholder
	got := Format("{foo {name}!", map[string]any{"name": "Bo"})
	assert.Equal(t, "{foo Bo!", got)
}

func TestFormat_NoSubstitutionIntoResults(t *testing.T) {
	t.Parallel()
	// values containing placeholder syntax are not re-scanned
	got := Format("{a}", map[string]any{"a": "{b}", "b": "nope"})
	assert.Equal(t, "{b}", got)
}

func TestFormat_Deterministic(t *testing.T) {
	t.Parallel()
	bindings := map[string]any{"a": 1, "b": 2}
	first := Format("{a}-{b}-{c}", bindings)
	for range 10 {
		assert.Equal(t, first, Format("{a}-{b}-{c}", bindings))
	}
}

func BenchmarkFormat(b *testing.B) {
	bindings := map[string]any{"name": "Alice", "app": "unversion"}
	for b.Loop() {
		Format("Hello {name}, welcome to {app}. Bye {name}.", bindings)
	}
}
