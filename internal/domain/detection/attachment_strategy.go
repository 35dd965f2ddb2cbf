package detection

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fjd/job-scam-detector/internal/domain"
)

// EvidenceFileStrategy screens the name of the uploaded document
//
// Attack pattern: "offer letters" shipped as executables or with a disguised
// double extension (offer_letter.pdf.exe)
type EvidenceFileStrategy struct{}

// NewEvidenceFileStrategy creates a new evidence file screening strategy
func NewEvidenceFileStrategy() *EvidenceFileStrategy {
	return &EvidenceFileStrategy{}
}

// Name returns the strategy name
func (s *EvidenceFileStrategy) Name() string {
	return "Evidence File Screening"
}

// Collect checks the uploaded document for executable or disguised file names
func (s *EvidenceFileStrategy) Collect(_ context.Context, input SignalInput) *domain.AuxSignal {
	doc := input.Bundle.Document
	if doc == nil || doc.Filename == "" {
		return nil
	}

	filename := strings.ToLower(filepath.Base(doc.Filename))

	// Executables and scripts
	highRiskExtensions := []string{
		".exe", ".scr", ".bat", ".cmd", ".com", ".pif",
		".vbs", ".js", ".jar", ".msi", ".apk", ".app",
	}
	for _, ext := range highRiskExtensions {
		if strings.HasSuffix(filename, ext) {
			return &domain.AuxSignal{
				Source: domain.AuxEvidenceFile,
				Score:  90,
				Reason: fmt.Sprintf("Document is an executable file: %s", doc.Filename),
			}
		}
	}

	// Double extension trick; legitimate offer letters rarely carry two
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if inner := filepath.Ext(base); isDocumentExtension(inner) {
		return &domain.AuxSignal{
			Source: domain.AuxEvidenceFile,
			Score:  85,
			Reason: fmt.Sprintf("Suspicious document name (double extension): %s", doc.Filename),
		}
	}

	return nil
}

func isDocumentExtension(ext string) bool {
	switch ext {
	case ".pdf", ".doc", ".docx", ".txt", ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
