package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/fjd/job-scam-detector/internal/config"
	"github.com/fjd/job-scam-detector/internal/ports"
)

// ErrUnavailable is returned by an oracle whose model could not be loaded
var ErrUnavailable = errors.New("text classifier unavailable")

// Unavailable stands in for a classifier that failed to load at startup
type Unavailable struct {
	Cause error
}

// Predict always fails with ErrUnavailable
func (u Unavailable) Predict(_ context.Context, _ string) (float64, error) {
	if u.Cause != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, u.Cause)
	}
	return 0, ErrUnavailable
}

// FromConfig builds the configured classifier. A load failure is returned
// together with an Unavailable oracle so the caller can keep serving.
func FromConfig(cfg config.OracleConfig) (ports.TextProbabilityOracle, error) {
	switch cfg.Kind {
	case "onnx":
		o, err := LoadONNX(cfg.ModelPath, cfg.VocabPath, cfg.SharedLibrary, cfg.SeqLen)
		if err != nil {
			return Unavailable{Cause: err}, err
		}
		return o, nil
	case "lexicon":
		if cfg.WeightsPath == "" {
			return DefaultLexicon(), nil
		}
		o, err := LoadLexicon(cfg.WeightsPath)
		if err != nil {
			return Unavailable{Cause: err}, err
		}
		return o, nil
	case "none":
		return Unavailable{}, nil
	default:
		err := fmt.Errorf("unknown oracle kind %q", cfg.Kind)
		return Unavailable{Cause: err}, err
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
