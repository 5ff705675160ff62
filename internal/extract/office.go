package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func openZip(format string, buf []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, failed(format, err)
	}
	return zr, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// zipKind guesses the office package held by an unlabelled zip.
func zipKind(buf []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return mimeDOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return mimeXLSX
		}
	}
	return mimePPTX
}

// decodeDOCX renders word/document.xml as plain text, one paragraph per line.
func decodeDOCX(buf []byte) (string, error) {
	zr, err := openZip("docx", buf)
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return "", failed("docx", err)
		}
		text, err := xmlText(data, map[string]string{"tab": "\t", "br": "\n", "cr": "\n"})
		if err != nil {
			return "", failed("docx", err)
		}
		return text, nil
	}
	return "", failedf("docx", "word/document.xml not found")
}

// decodePPTX renders every slide's text runs, slides in numeric order separated by a
// blank line.
func decodePPTX(buf []byte) (string, error) {
	zr, err := openZip("pptx", buf)
	if err != nil {
		return "", err
	}
	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slidePathRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n, f})
		}
	}
	if len(slides) == 0 {
		return "", failedf("pptx", "no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		data, err := readZipFile(s.f)
		if err != nil {
			return "", failed("pptx", err)
		}
		text, err := xmlText(data, map[string]string{"br": "\n"})
		if err != nil {
			return "", failed("pptx", fmt.Errorf("slide %d: %w", s.n, err))
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// xmlText collects the character data of every <t> element, ends a line at every </p> and
// writes breaks[local] for the named empty elements.
func xmlText(data []byte, breaks map[string]string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			} else if s, ok := breaks[t.Name.Local]; ok {
				sb.WriteString(s)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
