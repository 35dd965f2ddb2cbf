package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/spf13/cobra"
)

var (
	imagePath    string
	documentPath string
	linkArg      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze local evidence once and print the JSON report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle := domain.EvidenceBundle{Link: linkArg}

		var err error
		if bundle.Image, err = readBlob(imagePath); err != nil {
			return err
		}
		if bundle.Document, err = readBlob(documentPath); err != nil {
			return err
		}

		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		report := a.service.Analyze(cmd.Context(), bundle)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&imagePath, "image", "", "Screenshot or photo to OCR")
	analyzeCmd.Flags().StringVar(&documentPath, "document", "", "Offer letter or chat export (.pdf, .docx, .txt, or an image)")
	analyzeCmd.Flags().StringVar(&linkArg, "link", "", "Job posting or application link")
}

func readBlob(path string) (*domain.Blob, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence %s: %w", path, err)
	}
	return &domain.Blob{Filename: filepath.Base(path), Data: data}, nil
}
