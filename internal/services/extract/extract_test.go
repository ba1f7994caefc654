package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSupported(t *testing.T) {
	for _, ext := range []string{".docx", ".pdf", ".txt", ".xlsx", ".xls"} {
		assert.True(t, Supported(ext), ext)
	}
	assert.True(t, Supported(".DOCX"))
	assert.False(t, Supported(".csv"))
	assert.False(t, Supported(".exe"))
	assert.False(t, Supported(""))
}

func TestExtractUnsupportedExtension(t *testing.T) {
	_, err := Extract([]byte("data"), ".csv", "data.csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractTxtUTF8(t *testing.T) {
	src, err := Extract([]byte("xin chào thế giới"), ".txt", "hello.txt")
	require.NoError(t, err)
	text, ok := src.(TextSource)
	require.True(t, ok)
	assert.Equal(t, "xin chào thế giới", text.Text)
}

func TestExtractTxtInvalidBytesNeverFails(t *testing.T) {
	// Mostly valid UTF-8 with a stray continuation byte
	data := append([]byte("valid utf-8 text here"), 0x80)
	src, err := Extract(data, ".txt", "broken.txt")
	require.NoError(t, err)
	text := src.(TextSource)
	assert.Contains(t, text.Text, "valid utf-8 text here")

	// Pure single-byte encoding falls back to a byte-per-rune decode
	latin := []byte{0xe9, 0xe8, 0xe7, 0xf4, 0xfb, 0xe9, 0xe8, 0xe7}
	src, err = Extract(latin, ".txt", "latin.txt")
	require.NoError(t, err)
	text = src.(TextSource)
	assert.Equal(t, "éèçôûéèç", text.Text)
}

func TestExtractDocx(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	src, err := Extract(data, ".docx", "doc.docx")
	require.NoError(t, err)
	text := src.(TextSource)
	lines := strings.Split(text.Text, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "First paragraph.", lines[0])
	assert.Equal(t, "Second paragraph.", lines[1])
}

func TestExtractDocxNotAnArchive(t *testing.T) {
	_, err := Extract([]byte("plain garbage"), ".docx", "bad.docx")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "bad.docx", exErr.Filename)
}

func TestExtractDocxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract(buf.Bytes(), ".docx", "empty.docx")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
}

func TestExtractXlsx(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "age"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Alice", 30}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"Bob", 25}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	src, err := Extract(buf.Bytes(), ".xlsx", "people.xlsx")
	require.NoError(t, err)
	tabular, ok := src.(TabularSource)
	require.True(t, ok)
	// The empty row 3 is dropped
	require.Len(t, tabular.Records, 2)
	assert.Equal(t, "name: Alice; age: 30", tabular.Records[0].String())
	assert.Equal(t, "name: Bob; age: 25", tabular.Records[1].String())
}

func TestExtractXlsxMissingHeaderFallsBackToColumnNames(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"h1", "", "h3"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"a", "b", "c"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	src, err := Extract(buf.Bytes(), ".xlsx", "cols.xlsx")
	require.NoError(t, err)
	tabular := src.(TabularSource)
	require.Len(t, tabular.Records, 1)
	assert.Equal(t, "h1: a; column_2: b; h3: c", tabular.Records[0].String())
}

func TestExtractXlsxMalformed(t *testing.T) {
	_, err := Extract([]byte("not a workbook"), ".xlsx", "bad.xlsx")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "bad.xlsx", exErr.Filename)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractPdfMalformed(t *testing.T) {
	_, err := Extract([]byte("%PDF-garbage"), ".pdf", "bad.pdf")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
}

func TestExtractionErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ExtractionError{Filename: "f.docx", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "f.docx")
}

func TestRecordStringStableOrder(t *testing.T) {
	r := Record{Fields: []Field{
		{Name: "b", Value: "2"},
		{Name: "a", Value: "1"},
	}}
	assert.Equal(t, "b: 2; a: 1", r.String())
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
