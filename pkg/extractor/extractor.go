package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeTXT FileType = "txt"
)

// Document is an uploaded file before extraction. It is discarded once its text is indexed.
type Document struct {
	Name string
	Type FileType
	Data []byte
}

// NewDocument derives the declared type from the file name extension.
func NewDocument(name string, data []byte) (Document, error) {
	ft, err := DetectType(name)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: name, Type: ft, Data: data}, nil
}

func DetectType(name string) (FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch FileType(ext) {
	case FileTypePDF:
		return FileTypePDF, nil
	case FileTypeTXT:
		return FileTypeTXT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
}

// Extractor turns raw document bytes into plain text.
type Extractor interface {
	Extract(doc Document) (string, error)
}

type textExtractor struct{}

func New() Extractor {
	return textExtractor{}
}

func (textExtractor) Extract(doc Document) (string, error) {
	switch doc.Type {
	case FileTypeTXT:
		return strings.ToValidUTF8(string(doc.Data), "�"), nil
	case FileTypePDF:
		return extractPDF(doc.Data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, doc.Type)
	}
}

// extractPDF concatenates the plain text of every page, one trailing newline per page.
// Pages without a text layer are skipped.
func extractPDF(data []byte) (text string, err error) {
	// the pdf parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if pageText == "" {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
