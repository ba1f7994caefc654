package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// readDocx extracts paragraph text from a .docx archive. A docx file is a
// zip containing word/document.xml; paragraphs are <w:p> elements and text
// runs are <w:t> elements.
func readDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a valid docx archive: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document.xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return "", fmt.Errorf("malformed text run: %w", err)
				}
				sb.WriteString(text)
			}
		case xml.EndElement:
			// Paragraph boundary
			if el.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
