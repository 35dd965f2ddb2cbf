package detection

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pattern is a named, compiled veto rule
type Pattern struct {
	Name string
	Expr *regexp.Regexp
	// IdentityVerification marks suspicious phrases that a legitimate
	// background-check vendor would also use
	IdentityVerification bool
}

// RuleSet holds every keyword list and pattern the detectors read.
// It is built once at startup and never mutated afterwards.
type RuleSet struct {
	// Fatal patterns are evaluated in slice order; the first match wins
	Fatal      []Pattern
	Suspicious []Pattern
	// Whitelist phrases suppress identity-verification suspicious patterns
	Whitelist []string

	// FreeProviders are public mail domains a real employer would not hire from
	FreeProviders map[string]struct{}
	// HiringKeywords in the evidence text turn a free-mail sender into a fatal identity
	HiringKeywords []string
	// UsernameKeywords are corporate-sounding words scammers put in mailbox names
	UsernameKeywords []string
	// CompanyPatterns extract a claimed company name; the first pattern with a match wins
	CompanyPatterns []*regexp.Regexp
}

// IsFreeProvider reports whether domain is a public mail provider
func (r *RuleSet) IsFreeProvider(domain string) bool {
	_, ok := r.FreeProviders[domain]
	return ok
}

// DefaultRuleSet returns the built-in rule set
func DefaultRuleSet() *RuleSet {
	rs, err := compileRuleSet(defaultRuleFile)
	if err != nil {
		// Built-in rules are static; a failure here is a programming error
		panic(fmt.Sprintf("invalid built-in rule set: %v", err))
	}
	return rs
}

// LoadRuleSet reads a YAML rule file. Sections left empty in the file keep
// their built-in defaults.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}

	merged := defaultRuleFile
	if len(file.Fatal) > 0 {
		merged.Fatal = file.Fatal
	}
	if len(file.Suspicious) > 0 {
		merged.Suspicious = file.Suspicious
	}
	if len(file.Whitelist) > 0 {
		merged.Whitelist = file.Whitelist
	}
	if len(file.FreeProviders) > 0 {
		merged.FreeProviders = file.FreeProviders
	}
	if len(file.HiringKeywords) > 0 {
		merged.HiringKeywords = file.HiringKeywords
	}
	if len(file.UsernameKeywords) > 0 {
		merged.UsernameKeywords = file.UsernameKeywords
	}

	return compileRuleSet(merged)
}

// RuleFile is the YAML representation of a rule set
type RuleFile struct {
	Fatal            []PatternSpec `yaml:"fatal"`
	Suspicious       []PatternSpec `yaml:"suspicious"`
	Whitelist        []string      `yaml:"whitelist"`
	FreeProviders    []string      `yaml:"free_providers"`
	HiringKeywords   []string      `yaml:"hiring_keywords"`
	UsernameKeywords []string      `yaml:"username_keywords"`
}

// PatternSpec is one uncompiled rule
type PatternSpec struct {
	Name                 string `yaml:"name"`
	Regex                string `yaml:"regex"`
	IdentityVerification bool   `yaml:"identity_verification"`
}

func compileRuleSet(file RuleFile) (*RuleSet, error) {
	fatal, err := compilePatterns(file.Fatal)
	if err != nil {
		return nil, fmt.Errorf("fatal patterns: %w", err)
	}
	suspicious, err := compilePatterns(file.Suspicious)
	if err != nil {
		return nil, fmt.Errorf("suspicious patterns: %w", err)
	}

	providers := make(map[string]struct{}, len(file.FreeProviders))
	for _, p := range file.FreeProviders {
		providers[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}

	return &RuleSet{
		Fatal:            fatal,
		Suspicious:       suspicious,
		Whitelist:        lowerAll(file.Whitelist),
		FreeProviders:    providers,
		HiringKeywords:   lowerAll(file.HiringKeywords),
		UsernameKeywords: lowerAll(file.UsernameKeywords),
		CompanyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`from\s+([A-Z][a-zA-Z0-9]+)`),
			regexp.MustCompile(`at\s+([A-Z][a-zA-Z0-9]+)`),
			regexp.MustCompile(`joining\s+([A-Z][a-zA-Z0-9]+)`),
		},
	}, nil
}

func compilePatterns(specs []PatternSpec) ([]Pattern, error) {
	out := make([]Pattern, 0, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("pattern %q has no name", spec.Regex)
		}
		// Text is lower-cased before scanning, so patterns are matched case-insensitively
		expr, err := regexp.Compile(`(?i)` + spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", spec.Name, err)
		}
		out = append(out, Pattern{
			Name:                 spec.Name,
			Expr:                 expr,
			IdentityVerification: spec.IdentityVerification,
		})
	}
	return out, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var defaultRuleFile = RuleFile{
	// Ordered by priority: payment channels first, then upfront fees,
	// then remote-access tools
	Fatal: []PatternSpec{
		{Name: "western union", Regex: `western\s*union`},
		{Name: "moneygram", Regex: `money\s*gram`},
		{Name: "registration fee", Regex: `registration\s+fee`},
		{Name: "security deposit", Regex: `security\s+deposit`},
		{Name: "processing fee", Regex: `processing\s+fee`},
		{Name: "deposit for verification", Regex: `deposit\s+for\s+verification`},
		{Name: "refundable amount", Regex: `refundable\s+amount`},
		{Name: "pay for gate pass", Regex: `pay\s+for\s+(a\s+)?gate\s*pass`},
		{Name: "pay for id card", Regex: `pay\s+for\s+(an?\s+)?id\s*card`},
		{Name: "pay for laptop", Regex: `pay\s+for\s+(a\s+|the\s+)?laptop`},
		{Name: "money for uniform", Regex: `(money|charge)\s+for\s+(the\s+)?uniform|uniform\s+charge`},
		{Name: "money for kit", Regex: `money\s+for\s+(the\s+)?kit`},
		{Name: "frozen wallet", Regex: `frozen\s+wallet`},
		{Name: "tax to withdraw", Regex: `tax\s+to\s+withdraw`},
		{Name: "merchant task", Regex: `merchant\s+task`},
		{Name: "investment required", Regex: `investment\s+required`},
		{Name: "bank otp", Regex: `bank\s+otp`},
		{Name: "scan qr code", Regex: `scan\s+(the\s+)?qr\s+code`},
		{Name: "anydesk", Regex: `\bany\s*desk\b`},
		{Name: "teamviewer", Regex: `\bteam\s*viewer\b`},
	},
	Suspicious: []PatternSpec{
		{Name: "verify your identity", Regex: `verify\s+your\s+identity`, IdentityVerification: true},
		{Name: "identity documents", Regex: `(send|upload|share)\s+(us\s+)?(a\s+copy\s+of\s+)?your\s+(id|passport|aadhaar|pan\s+card|driver'?s\s+licen[cs]e)`, IdentityVerification: true},
		{Name: "social security number", Regex: `social\s+security\s+number|\bssn\b`, IdentityVerification: true},
		{Name: "telegram", Regex: `\btelegram\b`},
		{Name: "whatsapp", Regex: `\bwhats\s*app\b`},
		{Name: "google map rating", Regex: `google\s+maps?\s+(rating|review)`},
		{Name: "daily payout", Regex: `(daily|instant)\s+(payout|payment|earning)s?`},
		{Name: "no experience", Regex: `no\s+experience\s+(needed|required)`},
		{Name: "gift card", Regex: `gift\s*cards?`},
		{Name: "crypto payment", Regex: `\b(bitcoin|btc|usdt|crypto\s*currency)\b`},
		{Name: "refundable", Regex: `\brefundable\b`},
		{Name: "limited slots", Regex: `limited\s+(slots|seats|vacancies)`},
		{Name: "earn per day", Regex: `earn\s+(rs\.?|₹|\$)?\s*\d[\d,]*\s*(per|a|/)\s*day`},
	},
	Whitelist: []string{
		"checkr", "background check", "hireright", "sterling check", "first advantage", "e-verify",
	},
	FreeProviders: []string{
		"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
		"rediffmail.com", "aol.com", "icloud.com", "protonmail.com",
		"yandex.com", "zoho.com", "mail.com", "gmx.com",
	},
	HiringKeywords: []string{
		"hiring", "job", "offer", "interview", "salary", "recruit",
	},
	UsernameKeywords: []string{
		"hr", "hiring", "manager", "recruit", "team", "desk",
		"career", "job", "offer", "support", "admin", "dept",
		"official", "work", "verify",
	},
}
