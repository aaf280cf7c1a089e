package mdutil

import (
	"html"
	"regexp"
	"strings"
)

// Entity matches an HTML entity reference.
const Entity = `&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[a-zA-Z][a-zA-Z0-9]{1,31});`

var (
	// EntityRegexp matches an HTML entity reference anywhere.
	EntityRegexp = regexp.MustCompile(Entity)

	entityOrEscapedChar = regexp.MustCompile(
		"\\\\[!\"#$%&'()*+,./:;<=>?@\\[\\\\\\]^_`{|}~-]|" + Entity)
	escapeInURI = regexp.MustCompile(
		`%[a-fA-F0-9]{0,2}|[^:/?#@!$&'()*+,;=a-zA-Z0-9\-._~]`)
)

// DecodeEntity decodes a complete entity reference such as "&amp;" or
// "&#x41;". It returns the input unchanged if it is not a known entity.
func DecodeEntity(s string) string {
	decoded := html.UnescapeString(s)
	if decoded == s {
		return s
	}
	// The standard decoder also accepts named entities that are only a prefix
	// of the name, like "&not" in "&notin;". Those are not entities here.
	if s[1] != '#' && strings.HasSuffix(decoded, ";") && decoded != ";" {
		return s
	}
	return decoded
}

// UnescapeString resolves backslash escapes and entity references in s.
func UnescapeString(s string) string {
	if strings.IndexAny(s, `\&`) == -1 {
		return s
	}
	return entityOrEscapedChar.ReplaceAllStringFunc(s, func(m string) string {
		if m[0] == '\\' {
			return m[1:]
		}
		return DecodeEntity(m)
	})
}

// EscapeHTML escapes the characters &, <, > and " in s. If preserveEntities is
// true, ampersands that start a valid entity reference are kept as is.
func EscapeHTML(s string, preserveEntities bool) string {
	if strings.IndexAny(s, `&<>"`) == -1 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		switch b := s[i]; b {
		case '&':
			if preserveEntities {
				if loc := EntityRegexp.FindStringIndex(s[i:]); loc != nil && loc[0] == 0 {
					sb.WriteString(s[i : i+loc[1]])
					i += loc[1] - 1
					continue
				}
			}
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

const hexDigits = "0123456789ABCDEF"

// PercentEncodeURL percent-encodes the characters in s that are neither
// reserved nor unreserved URI characters. Existing %XX sequences are kept; a
// "%" not followed by two hex digits is encoded as "%25".
func PercentEncodeURL(s string) string {
	return escapeInURI.ReplaceAllStringFunc(s, func(m string) string {
		if m[0] == '%' {
			if len(m) == 3 {
				return m
			}
			return "%25" + m[1:]
		}
		var sb strings.Builder
		for i := 0; i < len(m); i++ {
			b := m[i]
			sb.WriteByte('%')
			sb.WriteByte(hexDigits[b>>4])
			sb.WriteByte(hexDigits[b&0xF])
		}
		return sb.String()
	})
}
