package batch

import (
	"unicode/utf8"
	"unicode/utf16"
)

const hexDigits = "0123456789abcdef"

// escapeNonASCII rewrites every non-ASCII rune of an encoded JSON document as
// a \uXXXX escape, using surrogate pairs above the BMP. Non-ASCII bytes can
// only occur inside JSON strings, so the result decodes to the same value.
// Invalid UTF-8 is replaced by U+FFFD.
func escapeNonASCII(data []byte) []byte {
	ascii := true
	for _, c := range data {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return data
	}

	out := make([]byte, 0, len(data)+len(data)/2)
	for i := 0; i < len(data); {
		c := data[i]
		if c < utf8.RuneSelf {
			out = append(out, c)
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		i += size
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = appendEscape(out, hi)
			out = appendEscape(out, lo)
			continue
		}
		out = appendEscape(out, r)
	}
	return out
}

func appendEscape(out []byte, r rune) []byte {
	return append(out, '\\', 'u',
		hexDigits[r>>12&0xf], hexDigits[r>>8&0xf], hexDigits[r>>4&0xf], hexDigits[r&0xf])
}
