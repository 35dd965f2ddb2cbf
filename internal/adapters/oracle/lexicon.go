package oracle

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LexiconOracle is a logistic model over unigram and bigram weights.
// Each distinct feature present in the text contributes its weight once.
type LexiconOracle struct {
	intercept float64
	weights   map[string]float64
}

// LexiconFile is the YAML form of a lexicon model
type LexiconFile struct {
	Intercept float64            `yaml:"intercept"`
	Weights   map[string]float64 `yaml:"weights"`
}

// NewLexiconOracle builds a lexicon oracle from in-memory weights.
// Feature keys are normalised the same way input text is.
func NewLexiconOracle(intercept float64, weights map[string]float64) *LexiconOracle {
	norm := make(map[string]float64, len(weights))
	for k, w := range weights {
		norm[strings.Join(words(k), " ")] = w
	}
	return &LexiconOracle{intercept: intercept, weights: norm}
}

// LoadLexicon reads lexicon weights from a YAML file
func LoadLexicon(path string) (*LexiconOracle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var file LexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(file.Weights) == 0 {
		return nil, fmt.Errorf("lexicon %s has no weights", path)
	}
	return NewLexiconOracle(file.Intercept, file.Weights), nil
}

// Predict returns sigmoid(intercept + sum of matched feature weights)
func (l *LexiconOracle) Predict(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tokens := words(text)
	seen := make(map[string]struct{}, len(tokens)*2)
	z := l.intercept
	add := func(feature string) {
		if _, dup := seen[feature]; dup {
			return
		}
		seen[feature] = struct{}{}
		z += l.weights[feature]
	}
	for i, tok := range tokens {
		add(tok)
		if i > 0 {
			add(tokens[i-1] + " " + tok)
		}
	}
	return sigmoid(z), nil
}

// DefaultLexicon returns the built-in recruitment-scam lexicon
func DefaultLexicon() *LexiconOracle {
	return NewLexiconOracle(defaultIntercept, defaultWeights)
}

const defaultIntercept = -2.0

var defaultWeights = map[string]float64{
	// payment and fee language
	"registration fee": 2.5,
	"security deposit": 2.5,
	"processing fee":   2.2,
	"refundable":       1.6,
	"deposit":          1.0,
	"fee":              0.8,
	"pay":              0.6,
	"payment":          0.5,
	"upi":              1.2,
	"bitcoin":          1.5,
	"usdt":             1.5,
	"gift card":        1.8,
	"western union":    3.0,
	"wallet":           0.9,
	"withdraw":         1.0,
	"commission":       0.9,

	// task and too-good-to-be-true offers
	"daily payout":  1.8,
	"earn":          0.7,
	"per day":       1.0,
	"from home":     0.8,
	"part time":     0.6,
	"no experience": 1.0,
	"limited slots": 1.2,
	"urgent":        0.7,
	"immediately":   0.5,
	"task":          0.6,
	"rating":        0.5,
	"subscribe":     1.0,
	"prepaid":       1.2,

	// off-platform contact
	"telegram":   1.3,
	"whatsapp":   1.1,
	"contact hr": 0.6,
	"dm":         0.5,

	// legitimate hiring language
	"interview":         -0.6,
	"job description":   -0.8,
	"responsibilities":  -0.9,
	"qualifications":    -0.9,
	"benefits":          -0.5,
	"equal opportunity": -1.2,
	"background check":  -0.4,
	"apply through":     -0.5,
	"careers page":      -0.8,
	"team":              -0.2,
	"experience with":   -0.7,
	"years":             -0.2,
}
