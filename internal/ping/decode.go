package ping

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// defaultCharset is the legacy console code page ping writes in when the
// output is not UTF-8. Windows consoles in the locales we parse default to
// CP850.
func defaultCharset(goos string) encoding.Encoding {
	if goos == "windows" {
		return charmap.CodePage850
	}
	return nil
}

// decodeOutput turns raw process output into text. It never fails: bytes
// that cannot be decoded become U+FFFD.
func decodeOutput(b []byte, legacy encoding.Encoding) string {
	if utf8.Valid(b) {
		return string(b)
	}

	if legacy != nil {
		if decoded, err := legacy.NewDecoder().Bytes(b); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}

	return strings.ToValidUTF8(string(b), "�")
}
