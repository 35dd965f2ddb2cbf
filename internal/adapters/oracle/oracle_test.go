package oracle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fjd/job-scam-detector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconOracle_Predict(t *testing.T) {
	oracle := NewLexiconOracle(0, map[string]float64{
		"western union": 4,
		"interview":     -2,
		"Fee!":          1,
	})
	ctx := context.Background()

	p, err := oracle.Predict(ctx, "")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)

	p, err = oracle.Predict(ctx, "Send it via Western Union")
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(4), p, 1e-9)

	// repeated features count once
	p, err = oracle.Predict(ctx, "fee fee fee, interview")
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(1-2), p, 1e-9)
}

func TestLexiconOracle_Deterministic(t *testing.T) {
	oracle := DefaultLexicon()
	text := "Registration fee required. Contact us on Telegram for daily payout."

	first, err := oracle.Predict(context.Background(), text)
	require.NoError(t, err)
	second, err := oracle.Predict(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Greater(t, first, 0.9)

	benign, err := oracle.Predict(context.Background(), "Job description, responsibilities and qualifications for the interview")
	require.NoError(t, err)
	assert.Less(t, benign, 0.2)
}

func TestLexiconOracle_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DefaultLexicon().Predict(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intercept: -1\nweights:\n  telegram: 3\n"), 0o600))

	oracle, err := LoadLexicon(path)
	require.NoError(t, err)

	p, err := oracle.Predict(context.Background(), "message me on telegram")
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(2), p, 1e-9)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("intercept: 1\n"), 0o600))
	_, err = LoadLexicon(empty)
	assert.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Predict(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Unavailable{Cause: errors.New("model missing")}.Predict(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "model missing")
}

func TestFromConfig(t *testing.T) {
	o, err := FromConfig(config.OracleConfig{Kind: "lexicon"})
	require.NoError(t, err)
	assert.IsType(t, &LexiconOracle{}, o)

	o, err = FromConfig(config.OracleConfig{Kind: "none"})
	require.NoError(t, err)
	assert.IsType(t, Unavailable{}, o)

	o, err = FromConfig(config.OracleConfig{Kind: "lexicon", WeightsPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
	_, predictErr := o.Predict(context.Background(), "x")
	assert.ErrorIs(t, predictErr, ErrUnavailable)
}
