package webadapter

import (
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent escapes s like JavaScript's encodeURIComponent. Only
// ASCII letters, digits and - _ . ! ~ * ' ( ) pass through; every other
// byte of the UTF-8 encoding becomes %XX. Invalid UTF-8 is encoded as
// U+FFFD.
func EncodeURIComponent(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}

	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
