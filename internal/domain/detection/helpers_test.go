package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance_Levenshtein(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "ab", 1},
		{"microsoft", "micros0ft", 1},
		{"paypal", "paypa1", 1},
		{"google", "g00gle", 2},
	}

	for _, tt := range tests {
		t.Run(tt.s1+" vs "+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.expected, editDistance(tt.s1, tt.s2, 1))
		})
	}
}

func TestEditDistance_Indel(t *testing.T) {
	// A substitution costs one deletion plus one insertion
	assert.Equal(t, 2, editDistance("amazon", "amaz0n", 2))
	assert.Equal(t, 1, editDistance("amazon", "amazonn", 2))
	assert.Equal(t, 4, editDistance("google", "g00gle", 2))
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected float64
	}{
		{"amazon", "amazon", 100},
		{"amazon", "amaz0n", 83.33},
		{"amazon", "amazonn", 92.31},
		{"microsoft", "micros0ft", 88.89},
		{"amazon", "flipkart", 14.29},
		{"", "", 100},
	}

	for _, tt := range tests {
		t.Run(tt.s1+" vs "+tt.s2, func(t *testing.T) {
			assert.InDelta(t, tt.expected, similarity(tt.s1, tt.s2), 0.01)
		})
	}
}

func TestFindEmailAndURLs(t *testing.T) {
	text := "Contact hr.team@gmail.com or visit https://apply-now.xyz/form and www.jobs.example.com today"

	assert.Equal(t, "hr.team@gmail.com", FindEmail(text))
	assert.Equal(t, []string{"https://apply-now.xyz/form", "www.jobs.example.com"}, FindURLs(text))
	assert.Empty(t, FindEmail("no address here"))
	assert.Empty(t, FindURLs("no links here"))
}

func TestSplitEmail(t *testing.T) {
	user, dom, ok := splitEmail("Sarah.Jones@Microsoft.com")
	assert.True(t, ok)
	assert.Equal(t, "sarah.jones", user)
	assert.Equal(t, "microsoft.com", dom)

	_, _, ok = splitEmail("not-an-email")
	assert.False(t, ok)

	_, _, ok = splitEmail("@nouser.com")
	assert.False(t, ok)
}
