package extract

import (
	"strings"
)

// Source is the extracted content of a document. Text sources are chunked as
// one blob; tabular sources keep row boundaries so each record is chunked on
// its own.
type Source interface {
	isSource()
}

// TextSource is a single concatenated text blob (docx, pdf, txt).
type TextSource struct {
	Text string
}

func (TextSource) isSource() {}

// TabularSource is one record per non-empty spreadsheet row.
type TabularSource struct {
	Records []Record
}

func (TabularSource) isSource() {}

// Record is a single spreadsheet row as an ordered list of fields. Field
// order follows the header row, so serialization is stable.
type Record struct {
	Fields []Field
}

// Field is one cell of a record, keyed by its column header.
type Field struct {
	Name  string
	Value string
}

// String serializes the record with stable field order, one "name: value"
// pair per segment.
func (r Record) String() string {
	parts := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		parts = append(parts, f.Name+": "+f.Value)
	}
	return strings.Join(parts, "; ")
}

// Supported reports whether the extension belongs to a supported format.
func Supported(extension string) bool {
	switch strings.ToLower(extension) {
	case ".docx", ".pdf", ".txt", ".xlsx", ".xls":
		return true
	}
	return false
}

// Extract turns raw file bytes into a Source according to the declared
// extension. It is a pure function of its inputs; no content sniffing.
func Extract(data []byte, extension, filename string) (Source, error) {
	switch strings.ToLower(extension) {
	case ".docx":
		text, err := readDocx(data)
		if err != nil {
			return nil, &ExtractionError{Filename: filename, Err: err}
		}
		return TextSource{Text: text}, nil
	case ".pdf":
		text, err := readPDF(data)
		if err != nil {
			return nil, &ExtractionError{Filename: filename, Err: err}
		}
		return TextSource{Text: text}, nil
	case ".txt":
		return TextSource{Text: decodeText(data)}, nil
	case ".xlsx", ".xls":
		records, err := readSpreadsheet(data)
		if err != nil {
			return nil, &ExtractionError{Filename: filename, Err: err}
		}
		return TabularSource{Records: records}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
