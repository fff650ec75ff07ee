package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	odfContentPart = "content.xml"
	odfTextNS      = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
)

// extractODF returns the paragraph and heading text of an OpenDocument file's
// content.xml, one line per paragraph. It serves both .odp and .ods: slides
// and spreadsheet cells keep their text in the same text:p elements.
func extractODF(content []byte, kind string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", kind, err)
	}
	body, err := readZipPart(zr, odfContentPart)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", kind, err)
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	var b strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", kind, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != odfTextNS {
				continue
			}
			switch t.Name.Local {
			case "p", "h":
				depth++
			case "tab":
				b.WriteByte('\t')
			case "line-break":
				b.WriteByte('\n')
			case "s":
				b.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != odfTextNS {
				continue
			}
			if t.Name.Local == "p" || t.Name.Local == "h" {
				depth--
				b.WriteByte('\n')
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
