package lookup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/fjd/job-scam-detector/internal/domain/detection"
)

// FileBlacklist is a read-only set of known scam links and hosts.
// Lines are exact links or bare hosts. A '#' at line start or after
// whitespace starts a comment; a '#' inside a link is a URL fragment.
type FileBlacklist struct {
	entries map[string]struct{}
}

// NewBlacklist builds a blacklist from in-memory entries
func NewBlacklist(entries []string) *FileBlacklist {
	b := &FileBlacklist{entries: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		e = normaliseEntry(e)
		if e == "" {
			continue
		}
		// bare hosts are matched against LinkHost, which drops "www."
		if !strings.ContainsAny(e, "/:") {
			e = strings.TrimPrefix(e, "www.")
		}
		b.entries[e] = struct{}{}
	}
	return b
}

// LoadBlacklist reads a blacklist file. An empty path yields an empty list.
func LoadBlacklist(path string) (*FileBlacklist, error) {
	if path == "" {
		return NewBlacklist(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blacklist: %w", err)
	}
	defer f.Close()
	return readBlacklist(f)
}

func readBlacklist(r io.Reader) (*FileBlacklist, error) {
	var entries []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		entries = append(entries, stripComment(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read blacklist: %w", err)
	}
	return NewBlacklist(entries), nil
}

func stripComment(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		if j := strings.Index(line[i:], "#"); j >= 0 {
			return line[:i+j]
		}
	}
	return line
}

// Len returns the number of entries
func (b *FileBlacklist) Len() int {
	return len(b.entries)
}

// Contains reports whether the link, or its host, is blacklisted
func (b *FileBlacklist) Contains(link string) bool {
	if _, ok := b.entries[normaliseEntry(link)]; ok {
		return true
	}
	host := detection.LinkHost(link)
	if host == "" {
		return false
	}
	_, ok := b.entries[host]
	return ok
}

func normaliseEntry(s string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(s)), "/")
}
