package detection

import (
	"regexp"
	"strings"
)

var (
	// emailInTextRegex finds sender addresses inside OCR'd or pasted text
	emailInTextRegex = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

	urlInTextRegex = regexp.MustCompile(`(https?://\S+|www\.\S+)`)
)

// FindEmail returns the first email address in text, or "" if there is none
func FindEmail(text string) string {
	return emailInTextRegex.FindString(text)
}

// FindURLs returns every http(s) or www. token found in text
func FindURLs(text string) []string {
	return urlInTextRegex.FindAllString(text, -1)
}

// splitEmail returns the lower-cased username and domain of an address.
// ok is false when either part is missing.
func splitEmail(email string) (username, domain string, ok bool) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", "", false
	}
	username = strings.ToLower(strings.TrimSpace(parts[0]))
	domain = strings.ToLower(strings.TrimSpace(parts[1]))
	if username == "" || domain == "" {
		return "", "", false
	}
	return username, domain, true
}

// firstLabel returns "amazon" for "amazon.co.uk"
func firstLabel(domain string) string {
	if i := strings.Index(domain, "."); i >= 0 {
		return domain[:i]
	}
	return domain
}

// editDistance calculates a weighted edit distance between two strings.
// With substitutionCost 1 this is the Levenshtein distance; with 2 it is the
// insertion/deletion (indel) distance.
func editDistance(s1, s2 string, substitutionCost int) int {
	r1, r2 := []rune(s1), []rune(s2)

	// Base cases: if either string is empty, distance is the other string's length
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// matrix[i][j] = distance between r1[0:i] and r2[0:j]
	matrix := make([][]int, len(r1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(r2)+1)
	}
	for i := 0; i <= len(r1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(r2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			cost := substitutionCost
			if r1[i-1] == r2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len(r1)][len(r2)]
}

// similarity returns the normalized indel similarity of two strings on a 0-100 scale:
// (len1 + len2 - indel) / (len1 + len2) * 100. Two empty strings are identical.
func similarity(s1, s2 string) float64 {
	total := len([]rune(s1)) + len([]rune(s2))
	if total == 0 {
		return 100
	}
	distance := editDistance(s1, s2, 2)
	return float64(total-distance) / float64(total) * 100
}

// containsAny checks if text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// countKeywords counts how many keywords from the list appear in text
func countKeywords(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}
