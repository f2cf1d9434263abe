package orchestrator

import "strings"

// Encode serializes units into the line-oriented transformer payload:
// one "<id>: <text>" line per unit, in extraction order. Embedded newlines
// in a text are not escaped; a run containing one corrupts line-based
// parsing of its own round trip and falls back to the original text.
func Encode(units []*Unit) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(u.ID)
		b.WriteString(": ")
		b.WriteString(u.Original)
	}
	return b.String()
}

// Decode parses a transformer response into an id → text mapping. Each
// non-blank line is split at the first colon; both sides are trimmed and a
// later occurrence of an id overwrites an earlier one. Lines without a
// colon are returned in malformed for diagnostic logging. Decode never
// fails: the worst outcome is an incomplete mapping.
func Decode(resp string) (mapping map[string]string, malformed []string) {
	mapping = make(map[string]string)
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, text, ok := strings.Cut(line, ":")
		if !ok {
			malformed = append(malformed, line)
			continue
		}
		mapping[strings.TrimSpace(id)] = strings.TrimSpace(text)
	}
	return mapping, malformed
}
