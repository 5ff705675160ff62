package extract

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// maxControlRatio is the share of control characters above which bytes are not text.
const maxControlRatio = 0.05

// decodeText returns b as UTF-8. Bytes that are not valid UTF-8 are read as Windows-1252,
// which covers the Latin-1 exports of older office tools.
func decodeText(b []byte) string {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("\uFFFD")))
	}
	return string(out)
}

// plausibleText reports whether decoded looks like human-readable text rather than
// binary data.
func plausibleText(raw []byte, decoded string) bool {
	if bytes.IndexByte(raw, 0) >= 0 {
		return false
	}
	total, ctrl := 0, 0
	for _, r := range decoded {
		total++
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			ctrl++
		}
	}
	if total == 0 {
		return true
	}
	return float64(ctrl)/float64(total) <= maxControlRatio
}
