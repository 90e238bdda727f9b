package unversion

import (
	"fmt"
	"strings"
)

// Format substitutes {name} placeholders in text with values from bindings.
// Placeholders with no matching binding are left verbatim rather than
// failing, since prompts are often reused with partial context. A single
// left-to-right scan; no nested substitution, no escaping for literal braces.
// Deterministic and side-effect free.
func Format(text string, bindings map[string]any) string {
	if len(bindings) == 0 || !strings.ContainsRune(text, '{') {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		c := text[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		name, end, ok := scanPlaceholder(text, i)
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}
		v, bound := bindings[name]
		if !bound {
			b.WriteString(text[i:end])
		} else {
			b.WriteString(fmt.Sprint(v))
		}
		i = end
	}
	return b.String()
}

// scanPlaceholder reads a {identifier} token starting at the '{' at text[start].
// Returns the identifier and the index just past the closing brace.
func scanPlaceholder(text string, start int) (name string, end int, ok bool) {
	i := start + 1
	if i >= len(text) || !isIdentStart(text[i]) {
		return "", 0, false
	}
	for i < len(text) && isIdentByte(text[i]) {
		i++
	}
	if i >= len(text) || text[i] != '}' {
		return "", 0, false
	}
	return text[start+1 : i], i + 1, true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
