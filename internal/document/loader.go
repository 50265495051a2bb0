// Package document turns raw uploaded bytes into the plain text lines consumed by the
// bank detector and the transaction parsers.
package document

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// Kind is the loader chosen for a document.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindXLSX Kind = "xlsx"
	KindCSV  Kind = "csv"
	KindText Kind = "text"
)

// ErrEmptyDocument is returned when a document carries no bytes.
var ErrEmptyDocument = errors.New("document is empty")

// KindOf picks a loader from the MIME type, then the file extension, then the PDF magic.
func KindOf(doc domain.Document) Kind {
	switch strings.ToLower(doc.MIMEType) {
	case "application/pdf":
		return KindPDF
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return KindXLSX
	case "text/csv", "application/csv":
		return KindCSV
	}
	switch strings.ToLower(filepath.Ext(doc.FileName)) {
	case ".pdf":
		return KindPDF
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".csv":
		return KindCSV
	}
	if bytes.HasPrefix(doc.FileBytes, []byte("%PDF-")) {
		return KindPDF
	}
	return KindText
}

// Text extracts the document's text. On failure it returns an empty string and an
// error the caller is expected to log and absorb.
func Text(doc domain.Document) (string, error) {
	if len(doc.FileBytes) == 0 {
		return "", ErrEmptyDocument
	}

	var (
		text string
		err  error
	)
	switch KindOf(doc) {
	case KindPDF:
		text, err = pdfText(doc.FileBytes)
	case KindXLSX:
		text, err = xlsxText(doc.FileBytes)
	case KindCSV:
		text, err = csvText(doc.FileBytes)
	default:
		text, err = plainText(doc.FileBytes)
	}
	if err != nil {
		return "", fmt.Errorf("Text: %s: %w", doc.FileName, err)
	}
	return text, nil
}

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// pdfText reads row-ordered text first and falls back to the library's plain text
// extraction. The pdf library panics on some malformed files.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdfText: open: %w", err)
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("pdfText: pdf has no pages")
	}

	if text = pdfTextByRow(r, numPages); strings.TrimSpace(text) != "" {
		return text, nil
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdfText: plain text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdfText: read plain text: %w", err)
	}
	return string(b), nil
}

func pdfTextByRow(r *pdf.Reader, numPages int) string {
	var lines []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func xlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("xlsxText: open: %w", err)
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("xlsxText: sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			if line := joinCells(row); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func csvText(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("csvText: %w", err)
	}
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		if line := joinCells(rec); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// sniffDelimiter prefers ';' (Brazilian exports) when the header has more of them than commas.
func sniffDelimiter(data []byte) rune {
	header, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("plainText: not valid UTF-8")
	}
	return string(data), nil
}

func joinCells(cells []string) string {
	trimmed := make([]string, len(cells))
	empty := true
	for i, c := range cells {
		trimmed[i] = strings.TrimSpace(c)
		if trimmed[i] != "" {
			empty = false
		}
	}
	if empty {
		return ""
	}
	return strings.Join(trimmed, ";")
}
