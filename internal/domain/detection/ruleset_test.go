package detection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleSet(t *testing.T) {
	rules := DefaultRuleSet()

	require.NotEmpty(t, rules.Fatal)
	assert.Equal(t, "western union", rules.Fatal[0].Name)
	assert.True(t, rules.IsFreeProvider("gmail.com"))
	assert.False(t, rules.IsFreeProvider("microsoft.com"))
	assert.Len(t, rules.CompanyPatterns, 3)
}

func TestLoadRuleSet(t *testing.T) {
	dir := t.TempDir()

	t.Run("overrides only the sections present", func(t *testing.T) {
		path := filepath.Join(dir, "rules.yaml")
		content := `
fatal:
  - name: pay to apply
    regex: 'pay\s+to\s+apply'
whitelist:
  - " Checkr "
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		rules, err := LoadRuleSet(path)
		require.NoError(t, err)

		require.Len(t, rules.Fatal, 1)
		assert.Equal(t, "pay to apply", rules.Fatal[0].Name)
		assert.True(t, rules.Fatal[0].Expr.MatchString("PAY TO APPLY now"))
		assert.Equal(t, []string{"checkr"}, rules.Whitelist)
		// untouched sections keep their defaults
		assert.Equal(t, len(DefaultRuleSet().Suspicious), len(rules.Suspicious))
		assert.True(t, rules.IsFreeProvider("yahoo.com"))
	})

	t.Run("invalid regex is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		content := `
suspicious:
  - name: broken
    regex: '(unclosed'
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := LoadRuleSet(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("unnamed pattern is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "unnamed.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fatal:\n  - regex: 'x'\n"), 0o600))

		_, err := LoadRuleSet(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRuleSet(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
