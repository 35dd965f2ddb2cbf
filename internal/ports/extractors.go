package ports

import (
	"context"

	"github.com/fjd/job-scam-detector/internal/domain"
)

// ImageOCR extracts visible text from a screenshot or photo
type ImageOCR interface {
	ExtractText(ctx context.Context, image domain.Blob) (string, error)
}

// DocumentParser extracts text from an uploaded document (PDF, DOCX, TXT)
type DocumentParser interface {
	ExtractText(ctx context.Context, document domain.Blob) (string, error)
}

// PageContent is what link recon learned about a web page
type PageContent struct {
	Title string
	Body  string
}

// LinkRecon fetches a link and extracts its readable content
type LinkRecon interface {
	Fetch(ctx context.Context, link string) (PageContent, error)
}
