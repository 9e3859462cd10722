// Package pyliteral rewrites the Python literal records written by the
// segmentation and trail tools into JSON so they can be queried with gjson.
//
// Supported: single- or double-quoted strings, tuples, lists, dicts,
// trailing commas, None/True/False. Anything else is passed through and
// left for the JSON validator to reject.
package pyliteral

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ToJSON converts one literal to JSON text.
func ToJSON(src string) (string, error) {
	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\'' || c == '"':
			end, err := writeString(&b, src, i)
			if err != nil {
				return "", err
			}
			i = end
		case c == '(':
			b.WriteByte('[')
		case c == ')':
			b.WriteByte(']')
		case c == ',':
			if !closesNext(src, i+1) {
				b.WriteByte(',')
			}
		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			switch word := src[i:j]; word {
			case "None":
				b.WriteString("null")
			case "True":
				b.WriteString("true")
			case "False":
				b.WriteString("false")
			default:
				b.WriteString(word)
			}
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}

	out := b.String()
	if !gjson.Valid(out) {
		return "", fmt.Errorf("not a supported literal: %q", truncate(src, 80))
	}
	return out, nil
}

// Parse converts src and returns the parsed gjson result.
func Parse(src string) (gjson.Result, error) {
	js, err := ToJSON(src)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Parse(js), nil
}

// writeString copies the quoted string starting at src[start] as a JSON
// string and returns the index of its closing quote.
func writeString(b *strings.Builder, src string, start int) (int, error) {
	quote := src[start]
	b.WriteByte('"')
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case c == quote:
			b.WriteByte('"')
			return i, nil
		case c == '\\' && i+1 < len(src):
			i += writeEscape(b, src, i+1)
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return 0, fmt.Errorf("unterminated string starting at offset %d", start)
}

// writeEscape writes the escape whose letter is at src[i] and returns the
// number of bytes consumed after the backslash. Unknown escapes keep the
// backslash as a literal character, so unescaped Windows paths survive.
func writeEscape(b *strings.Builder, src string, i int) int {
	switch next := src[i]; next {
	case '\'':
		b.WriteByte('\'')
	case '\\', '"', '/', 'n', 't', 'r', 'b', 'f':
		b.WriteByte('\\')
		b.WriteByte(next)
	case 'a':
		b.WriteString(`\u0007`)
	case 'v':
		b.WriteString(`\u000b`)
	case 'x':
		if i+2 < len(src) && isHex(src[i+1]) && isHex(src[i+2]) {
			b.WriteString(`\u00`)
			b.WriteString(src[i+1 : i+3])
			return 3
		}
		b.WriteString(`\\x`)
	case 'u':
		if i+4 < len(src) && isHex(src[i+1]) && isHex(src[i+2]) && isHex(src[i+3]) && isHex(src[i+4]) {
			b.WriteString(`\u`)
			b.WriteString(src[i+1 : i+5])
			return 5
		}
		b.WriteString(`\\u`)
	default:
		b.WriteString(`\\`)
		// Re-scan next: it may be a quote or another backslash.
		return 0
	}
	return 1
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// closesNext reports whether the next non-space byte closes a container.
func closesNext(src string, i int) bool {
	for ; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case ']', ')', '}':
			return true
		default:
			return false
		}
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
