package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// ErrNoAPIKey means OCR is not configured
var ErrNoAPIKey = errors.New("ocr api key not configured")

const (
	ocrPrompt        = "Extract all text exactly."
	maxResponseBytes = 4 * 1024 * 1024
)

// GeminiClient extracts text from screenshots with a multimodal model.
// Model variants are tried in order; each gets a bounded number of attempts
// on transient failures (network, 429, 5xx).
type GeminiClient struct {
	endpoint string
	apiKey   string
	models   []string
	attempts int
	backoff  time.Duration
	client   *http.Client
	log      *zap.SugaredLogger
}

// NewGeminiClient creates a new OCR client
func NewGeminiClient(endpoint, apiKey string, models []string, timeout time.Duration, attempts int, log *zap.SugaredLogger) *GeminiClient {
	if attempts <= 0 {
		attempts = 1
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GeminiClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		models:   models,
		attempts: attempts,
		backoff:  500 * time.Millisecond,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ExtractText returns the text visible in the image
func (c *GeminiClient) ExtractText(ctx context.Context, blob domain.Blob) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	jpg, err := toJPEG(blob.Data)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: ocrPrompt},
				{InlineData: &inlineData{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(jpg)}},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal ocr request: %w", err)
	}

	var errs []error
	for _, model := range c.models {
		text, err := c.generate(ctx, model, body)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.log.Warnw("OCR model failed, trying next variant", "model", model, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", model, err))
	}
	if len(errs) == 0 {
		return "", errors.New("no ocr model configured")
	}
	return "", fmt.Errorf("all ocr models failed: %w", errors.Join(errs...))
}

func (c *GeminiClient) generate(ctx context.Context, model string, body []byte) (string, error) {
	b := retry.NewConstant(c.backoff)
	var text string
	err := retry.Do(ctx, retry.WithMaxRetries(uint64(c.attempts-1), b), func(ctx context.Context) error {
		var err error
		text, err = c.call(ctx, model, body)
		return err
	})
	return text, err
}

func (c *GeminiClient) call(ctx context.Context, model string, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, url.PathEscape(model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", retry.RetryableError(fmt.Errorf("call ocr: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("read ocr response: %w", err))
	}
	if len(respBody) > maxResponseBytes {
		return "", fmt.Errorf("ocr response exceeded limit (%d bytes)", maxResponseBytes)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiErrorResponse
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		err := fmt.Errorf("ocr error status %d: %s", resp.StatusCode, msg)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.RetryableError(err)
		}
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}

	var sb strings.Builder
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
