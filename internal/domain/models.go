package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EvidenceKind identifies one of the three evidence channels a user can submit
type EvidenceKind string

const (
	EvidenceImage    EvidenceKind = "image"
	EvidenceDocument EvidenceKind = "document"
	EvidenceLink     EvidenceKind = "link"
)

// Blob is an uploaded file (screenshot or document)
type Blob struct {
	Filename string
	Data     []byte
}

// IsImage reports whether the blob's filename names an image. Images uploaded
// in the document slot are read with OCR.
func (b Blob) IsImage() bool {
	switch strings.ToLower(filepath.Ext(b.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}

// EvidenceBundle holds the evidence submitted for a single analysis request.
// Every slot is optional; an empty bundle produces a degenerate report.
type EvidenceBundle struct {
	Image    *Blob
	Document *Blob
	Link     string
}

// Kinds returns the non-empty evidence slots in canonical order (image, document, link)
func (b EvidenceBundle) Kinds() []EvidenceKind {
	kinds := make([]EvidenceKind, 0, 3)
	if b.Image != nil {
		kinds = append(kinds, EvidenceImage)
	}
	if b.Document != nil {
		kinds = append(kinds, EvidenceDocument)
	}
	if b.Link != "" {
		kinds = append(kinds, EvidenceLink)
	}
	return kinds
}

// Count returns how many evidence slots are filled
func (b EvidenceBundle) Count() int {
	return len(b.Kinds())
}

// IsEmpty reports whether no evidence was supplied at all
func (b EvidenceBundle) IsEmpty() bool {
	return b.Count() == 0
}

// TextSegment is the text extracted from one evidence item
type TextSegment struct {
	Source EvidenceKind
	Text   string
}

// ExtractedText is the ordered list of text segments extracted from a bundle.
// Segments are always ordered image, document, link.
type ExtractedText struct {
	Segments []TextSegment
	// URLs are raw URL tokens found inside the extracted text
	URLs []string
}

// Combined joins all segments and the discovered URL tokens into one corpus
func (e ExtractedText) Combined() string {
	parts := make([]string, 0, len(e.Segments))
	for _, seg := range e.Segments {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	out := strings.Join(parts, "\n")
	if len(e.URLs) > 0 {
		out += " " + strings.Join(e.URLs, " ")
	}
	return out
}

// Source returns the text extracted for a given evidence kind, or ""
func (e ExtractedText) Source(kind EvidenceKind) string {
	for _, seg := range e.Segments {
		if seg.Source == kind {
			return seg.Text
		}
	}
	return ""
}

// IdentityVerdict is the categorical outcome of sender identity validation
type IdentityVerdict string

const (
	IdentityInvalid    IdentityVerdict = "INVALID"
	IdentityFatal      IdentityVerdict = "FATAL"
	IdentitySuspicious IdentityVerdict = "SUSPICIOUS"
	IdentityNeutral    IdentityVerdict = "NEUTRAL"
	IdentityVerified   IdentityVerdict = "VERIFIED"
)

// IdentitySignal is the trust assessment of the first sender email found in the evidence
type IdentitySignal struct {
	Email      string          `json:"email"`
	TrustScore int             `json:"trust_score"` // 0 to 100
	Reasons    []string        `json:"reasons"`
	Verdict    IdentityVerdict `json:"verdict"`
}

// TriggerKind separates conclusive veto matches from merely suspicious ones
type TriggerKind string

const (
	TriggerFatal      TriggerKind = "fatal"
	TriggerSuspicious TriggerKind = "suspicious"
)

// VetoTrigger records one rule that matched the evidence text
type VetoTrigger struct {
	Kind    TriggerKind `json:"kind"`
	Pattern string      `json:"pattern"` // rule name
	Match   string      `json:"match"`   // matched text, lower-cased
}

// VetoSignal is the deterministic result of scanning text against veto rules
type VetoSignal struct {
	Score    int           `json:"score"` // 100 on a fatal match, otherwise min(30*n, 90)
	Fatal    bool          `json:"fatal"`
	Triggers []VetoTrigger `json:"triggers"`
}

// AuxSource names an auxiliary signal collector
type AuxSource string

const (
	AuxBlacklist    AuxSource = "blacklist"
	AuxDomainAge    AuxSource = "domain_age"
	AuxContentRecon AuxSource = "content_recon"
	AuxEvidenceFile AuxSource = "evidence_file"
)

// AuxSignal is a score contribution from an auxiliary collector.
// Reason may be empty when the signal carries no audit-worthy finding.
type AuxSignal struct {
	Source AuxSource `json:"source"`
	Score  int       `json:"score"` // 0 to 100
	Reason string    `json:"reason,omitempty"`
}

// Label is the headline verdict of a report
type Label string

const (
	LabelSafe     Label = "SAFE"
	LabelModerate Label = "MODERATE"
	LabelHighRisk Label = "HIGH RISK"
)

// Color is the traffic-light color paired with a label
type Color string

const (
	ColorGreen  Color = "GREEN"
	ColorYellow Color = "YELLOW"
	ColorRed    Color = "RED"
)

// Confidence measures evidentiary breadth, not score magnitude
type Confidence string

const (
	ConfidenceLow     Confidence = "LOW"
	ConfidenceHigh    Confidence = "HIGH"
	ConfidenceExtreme Confidence = "EXTREME"
)

// ReasonKind classifies an audit reason so callers never have to parse message text
type ReasonKind string

const (
	ReasonIdentityAlert  ReasonKind = "identity_alert"
	ReasonDoubleThreat   ReasonKind = "double_threat"
	ReasonVetoFatal      ReasonKind = "veto_fatal"
	ReasonVetoSuspicious ReasonKind = "veto_suspicious"
	ReasonIdentity       ReasonKind = "identity"
	ReasonVerifiedSender ReasonKind = "verified_sender"
	ReasonAuxiliary      ReasonKind = "auxiliary"
	ReasonTrustShield    ReasonKind = "trust_shield"
	ReasonLinks          ReasonKind = "links"
	ReasonDegraded       ReasonKind = "degraded"
	ReasonDefault        ReasonKind = "default"
)

// Reason is one entry of the report's audit trail
type Reason struct {
	Kind    ReasonKind `json:"kind"`
	Message string     `json:"message"`
}

// FusedReport is the final, immutable output of an analysis
type FusedReport struct {
	ID          uuid.UUID      `json:"id"`
	FinalScore  int            `json:"score"` // 0 to 100
	Label       Label          `json:"label"`
	Color       Color          `json:"color"`
	Reasons     []Reason       `json:"reasons"`
	Confidence  Confidence     `json:"confidence"`
	TextPreview string         `json:"extracted_text"`
	Evidence    []EvidenceKind `json:"evidence"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ReasonMessages flattens the audit trail into display strings
func (r FusedReport) ReasonMessages() []string {
	out := make([]string, 0, len(r.Reasons))
	for _, reason := range r.Reasons {
		out = append(out, reason.Message)
	}
	return out
}

// ReportRecord is what gets appended to the report log
type ReportRecord struct {
	Report           FusedReport `json:"report"`
	Text             string      `json:"text"`
	DocumentFilename string      `json:"document_filename,omitempty"`
}

// LabelFor converts a final score to its label and color
func LabelFor(score int) (Label, Color) {
	switch {
	case score > 80:
		return LabelHighRisk, ColorRed
	case score > 40:
		return LabelModerate, ColorYellow
	default:
		return LabelSafe, ColorGreen
	}
}

// ConfidenceFor maps the number of supplied evidence items to a confidence level
func ConfidenceFor(evidenceCount int) Confidence {
	switch {
	case evidenceCount >= 3:
		return ConfidenceExtreme
	case evidenceCount == 2:
		return ConfidenceHigh
	default:
		return ConfidenceLow
	}
}
