package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions are the file types the file import tests generate.
// PDF is covered by the ingest package tests; no minimal PDF with extractable text is generated here.
var SupportedFileExtensions = []string{".txt", ".md", ".rst", ".docx", ".xlsx", ".pptx", ".odp", ".ods"}

// MinimalFile returns the bytes of a minimal file of type ext holding text.
func MinimalFile(ext, text string) ([]byte, error) {
	switch ext {
	case ".txt", ".md", ".rst":
		return []byte(text), nil
	case ".docx":
		return minimalDocx(text)
	case ".xlsx":
		return minimalXlsx(text)
	case ".pptx":
		return zipWith("ppt/slides/slide1.xml",
			`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
				`<p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>`+html.EscapeString(text)+`</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	case ".odp", ".ods":
		return zipWith("content.xml",
			`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">`+
				`<office:body><text:p>`+html.EscapeString(text)+`</text:p></office:body></office:document-content>`)
	default:
		return nil, fmt.Errorf("unsupported fixture type %q", ext)
	}
}

func minimalDocx(text string) ([]byte, error) {
	return zipWith("word/document.xml",
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>`+
			html.EscapeString(text)+`</w:t></w:r></w:p></w:body></w:document>`)
}

// zipWith returns a zip archive holding a single part.
func zipWith(name, body string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func minimalXlsx(text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", text); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
