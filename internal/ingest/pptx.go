package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const (
	pptxSlidePrefix = "ppt/slides/slide"
	drawingNS       = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

// slideNumber parses N out of ppt/slides/slideN.xml; ok is false for other parts.
func slideNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, pptxSlidePrefix) || !strings.HasSuffix(name, ".xml") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, pptxSlidePrefix), ".xml"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// extractPPTX returns the text of every slide in slide order, one line per paragraph.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PPTX: %w", err)
	}

	type slide struct {
		n    int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if n, ok := slideNumber(f.Name); ok {
			slides = append(slides, slide{n: n, file: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var b strings.Builder
	for _, s := range slides {
		data, err := readZipFile(s.file)
		if err != nil {
			return "", fmt.Errorf("open PPTX %s: %w", s.file.Name, err)
		}
		if err := appendSlideText(&b, data); err != nil {
			return "", fmt.Errorf("parse PPTX %s: %w", s.file.Name, err)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func appendSlideText(b *strings.Builder, data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != drawingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != drawingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}
