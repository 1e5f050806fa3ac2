package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/aisle-dev/aisle/internal/sanitize"
)

// ExtractDataBlock pulls the embedded JSON data document out of an
// assistant reply and returns the user-visible text with the block
// removed. A fenced ```json block wins; failing that, the first balanced
// top-level object is taken. Candidate blocks larger than the sanitizer's
// payload bound are left in place untouched; oversized documents are the
// sanitizer's call to reject, not ours to hand it piecemeal.
func ExtractDataBlock(reply string) (visible, block string) {
	if block, start, end := fencedJSONBlock(reply); block != "" {
		if utf8.RuneCountInString(block) > sanitize.MaxPayloadChars {
			return reply, block
		}
		visible = strings.TrimSpace(reply[:start] + reply[end:])
		return visible, block
	}

	if block, start, end := balancedObject(reply); block != "" {
		if utf8.RuneCountInString(block) > sanitize.MaxPayloadChars {
			return reply, block
		}
		visible = strings.TrimSpace(reply[:start] + reply[end:])
		return visible, block
	}

	return strings.TrimSpace(reply), ""
}

// fencedJSONBlock finds the first ```json ... ``` fence and returns its
// contents plus the byte range of the whole fence.
func fencedJSONBlock(s string) (block string, start, end int) {
	const opener = "```json"
	idx := strings.Index(s, opener)
	if idx < 0 {
		return "", 0, 0
	}
	rest := s[idx+len(opener):]
	closeIdx := strings.Index(rest, "```")
	if closeIdx < 0 {
		return "", 0, 0
	}
	block = strings.TrimSpace(rest[:closeIdx])
	start = idx
	end = idx + len(opener) + closeIdx + len("```")
	return block, start, end
}

// balancedObject scans for the first '{' and walks forward tracking brace
// depth, string state, and escapes until the object closes.
func balancedObject(s string) (block string, start, end int) {
	start = strings.IndexByte(s, '{')
	if start < 0 {
		return "", 0, 0
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], start, i + 1
			}
		}
	}
	return "", 0, 0
}
