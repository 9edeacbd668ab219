package s11n

import (
	"io"
	"unicode/utf8"
)

// isInCharacterRange checks if rune is in XML Character Range
func isInCharacterRange(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// replacement returns the escape sequence for r, or "" if r can be
// written as it is.
type replacement func(r rune, width int) string

func escapeWith(w io.Writer, s string, repl replacement) error {
	last := 0
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		esc := repl(r, width)
		if esc == "" {
			i += width
			continue
		}
		if _, err := io.WriteString(w, s[last:i]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, esc); err != nil {
			return err
		}
		i += width
		last = i
	}
	_, err := io.WriteString(w, s[last:])
	return err
}

func invalid(r rune, width int) bool {
	return !isInCharacterRange(r) || (r == utf8.RuneError && width == 1)
}

func attrReplacement(r rune, width int) string {
	switch r {
	case '"':
		return "&#34;"
	case '&':
		return "&amp;"
	case '<':
		return "&lt;"
	case '>':
		return "&gt;"
	case '\n':
		return "&#10;"
	case '\r':
		return "&#13;"
	case '\t':
		return "&#9;"
	}
	if invalid(r, width) {
		return "\uFFFD"
	}
	return ""
}

// EscapeAttrValue writes s to w so that it can be placed between
// double quotes.
func EscapeAttrValue(w io.Writer, s string) error {
	return escapeWith(w, s, attrReplacement)
}

// EscapeText writes the character data s to w, escaping markup. If
// escapeNewline is true, newline characters are escaped as well.
func EscapeText(w io.Writer, s string, escapeNewline bool) error {
	return escapeWith(w, s, func(r rune, width int) string {
		switch r {
		case '&':
			return "&amp;"
		case '<':
			return "&lt;"
		case '>':
			return "&gt;"
		case '\r':
			return "&#13;"
		case '\n':
			if escapeNewline {
				return "&#10;"
			}
			return ""
		}
		if invalid(r, width) {
			return "\uFFFD"
		}
		return ""
	})
}
