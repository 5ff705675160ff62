package extract

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFDecoder reads the text layer of a PDF.
type PDFDecoder interface {
	DecodePDF(ctx context.Context, buf []byte) (string, error)
}

// PDFCPU reads text layers with pdfcpu. Scanned PDFs yield little or no text.
type PDFCPU struct{}

// DecodePDF returns the text of every page, pages separated by newlines.
func (PDFCPU) DecodePDF(ctx context.Context, buf []byte) (text string, err error) {
	defer recoverAs("pdf", &err)

	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(buf), conf)
	if err != nil {
		return "", failed("pdf", err)
	}

	pages := make([]string, 0, pctx.PageCount)
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		if t := textFromContentStream(data); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n"), nil
}

var (
	// contentOpRe finds the text showing and line positioning operators of a content
	// stream, in order. Groups: 1 TJ array, 2 string operand, 3 string operator,
	// 4-5 Td/TD offsets.
	contentOpRe = regexp.MustCompile(`\[((?:\\.|[^\]\\])*)\]\s*TJ|\(((?:\\.|[^\\)])*)\)\s*(Tj|'|")|(-?[\d.]+)\s+(-?[\d.]+)\s+T[dD]\b|T\*|\bTm\b|\bET\b`)
	tjItemRe    = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)|(-?\d+(?:\.\d+)?)`)
	hSpaceRe    = regexp.MustCompile(`[ \t]+`)
)

// wordGap is the TJ kerning (thousandths of an em) treated as a space between words.
const wordGap = -200

func textFromContentStream(data []byte) string {
	var sb strings.Builder
	s := string(data)
	for _, m := range contentOpRe.FindAllStringSubmatchIndex(s, -1) {
		switch {
		case m[2] >= 0:
			for _, it := range tjItemRe.FindAllStringSubmatch(s[m[2]:m[3]], -1) {
				if it[2] != "" {
					if n, err := strconv.ParseFloat(it[2], 64); err == nil && n <= wordGap {
						sb.WriteByte(' ')
					}
					continue
				}
				sb.WriteString(decodePDFString(it[1]))
			}
		case m[4] >= 0:
			if op := s[m[6]:m[7]]; op == "'" || op == `"` {
				sb.WriteByte('\n')
			}
			sb.WriteString(decodePDFString(s[m[4]:m[5]]))
		case m[8] >= 0:
			if ty, _ := strconv.ParseFloat(s[m[10]:m[11]], 64); ty != 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		default:
			sb.WriteByte('\n')
		}
	}
	return cleanLines(decodeText([]byte(sb.String())))
}

// decodePDFString resolves the escape sequences of a PDF literal string.
func decodePDFString(raw string) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '\n':
			// line continuation
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// cleanLines collapses horizontal whitespace and drops blank lines.
func cleanLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r", "\n"), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(hSpaceRe.ReplaceAllString(l, " ")); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
