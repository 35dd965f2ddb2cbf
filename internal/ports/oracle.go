package ports

import "context"

// TextProbabilityOracle wraps a trained text classifier.
// Predict must be deterministic for identical input and a fixed model version.
type TextProbabilityOracle interface {
	// Predict returns the scam probability of text in [0, 1]
	Predict(ctx context.Context, text string) (float64, error)
}
