package oracle

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// oovIndex is reserved for words missing from the vocabulary; 0 is padding
const oovIndex int64 = 1

// sequenceFilters are replaced by spaces before splitting, matching the
// word-index tokenizer the sequence model was trained with
const sequenceFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n\r"

// WordIndexTokenizer maps lower-cased words to the integer ids of a trained
// sequence model and pads or truncates to a fixed length
type WordIndexTokenizer struct {
	index map[string]int64
}

// NewWordIndexTokenizer wraps an in-memory word index
func NewWordIndexTokenizer(index map[string]int64) *WordIndexTokenizer {
	return &WordIndexTokenizer{index: index}
}

// LoadWordIndexTokenizer reads a word index exported as a JSON or YAML
// object of word to id
func LoadWordIndexTokenizer(path string) (*WordIndexTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}

	index := make(map[string]int64)
	if err := json.Unmarshal(data, &index); err != nil {
		if yerr := yaml.Unmarshal(data, &index); yerr != nil {
			return nil, fmt.Errorf("parse vocab: %w", err)
		}
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("vocab %s is empty", path)
	}
	return NewWordIndexTokenizer(index), nil
}

// Encode returns exactly seqLen ids. Text is post-truncated and post-padded with 0.
func (t *WordIndexTokenizer) Encode(text string, seqLen int) []int64 {
	ids := make([]int64, seqLen)
	for i, word := range words(text) {
		if i >= seqLen {
			break
		}
		id, ok := t.index[word]
		if !ok {
			id = oovIndex
		}
		ids[i] = id
	}
	return ids
}

// words lower-cases text, blanks out punctuation and splits on whitespace
func words(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(sequenceFilters, r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}
