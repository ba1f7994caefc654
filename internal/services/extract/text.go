package extract

import (
	"strings"
	"unicode/utf8"
)

// decodeText decodes plain-text bytes with graceful fallback: strict UTF-8
// first, then lossy UTF-8 with replacement runes, and finally a raw
// single-byte decode so that extraction never fails on invalid bytes.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	if mostlyUTF8(data) {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}

	// Raw fallback: treat every byte as a Latin-1 code point
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// mostlyUTF8 reports whether at least half of the input decodes as valid
// multi-byte UTF-8 sequences, which makes lossy decoding preferable to a
// byte-per-rune reinterpretation.
func mostlyUTF8(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	valid := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		valid += size
		i += size
	}
	return valid*2 >= len(data)
}
