package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fjd/job-scam-detector/internal/domain"
)

// ErrUnsupportedFormat is returned for document extensions the parser does not read
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Parser extracts plain text from uploaded documents. The format is chosen by
// file extension: .pdf, .docx and .txt.
type Parser struct {
	// MaxBytes bounds the size of a document; 0 disables the check
	MaxBytes int
}

// NewParser creates a new document parser
func NewParser(maxBytes int) *Parser {
	return &Parser{MaxBytes: maxBytes}
}

// ExtractText returns the document's text
func (p *Parser) ExtractText(ctx context.Context, blob domain.Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.MaxBytes > 0 && len(blob.Data) > p.MaxBytes {
		return "", fmt.Errorf("document %s is %d bytes, limit is %d", blob.Filename, len(blob.Data), p.MaxBytes)
	}

	ext := strings.ToLower(filepath.Ext(blob.Filename))
	switch ext {
	case ".pdf":
		return pdfText(blob.Data)
	case ".docx":
		return docxText(blob.Data)
	case ".txt":
		return plainText(blob.Data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func plainText(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(data), ""))
}
