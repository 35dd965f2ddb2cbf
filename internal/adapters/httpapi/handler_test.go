package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAnalyzer struct {
	mu     sync.Mutex
	bundle domain.EvidenceBundle
	report domain.FusedReport
}

func (f *fakeAnalyzer) Analyze(_ context.Context, bundle domain.EvidenceBundle) domain.FusedReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundle = bundle
	return f.report
}

func newTestRouter(analyzer Analyzer, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(analyzer, prometheus.NewRegistry(), maxUpload, zap.NewNop().Sugar()).Router()
}

type upload struct {
	field, filename, content string
}

func multipartBody(t *testing.T, files []upload, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandler_Analyze(t *testing.T) {
	analyzer := &fakeAnalyzer{report: domain.FusedReport{
		FinalScore: 100,
		Label:      domain.LabelHighRisk,
		Color:      domain.ColorRed,
		Reasons:    []domain.Reason{{Kind: domain.ReasonVetoFatal, Message: "Fatal keyword: 'western union'"}},
		Confidence: domain.ConfidenceHigh,
	}}
	router := newTestRouter(analyzer, 1<<20)

	body, contentType := multipartBody(t,
		[]upload{
			{field: "image", filename: "chat.png", content: "png-bytes"},
			{field: "document", filename: "offer.txt", content: "Western Union"},
		},
		map[string]string{"link": "  https://jobs.example  "},
	)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, analyzer.bundle.Image)
	assert.Equal(t, "chat.png", analyzer.bundle.Image.Filename)
	assert.Equal(t, []byte("png-bytes"), analyzer.bundle.Image.Data)
	require.NotNil(t, analyzer.bundle.Document)
	assert.Equal(t, "offer.txt", analyzer.bundle.Document.Filename)
	assert.Equal(t, "https://jobs.example", analyzer.bundle.Link)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(100), got["score"])
	assert.Equal(t, "HIGH RISK", got["label"])
	assert.Equal(t, "RED", got["color"])
	assert.Equal(t, "HIGH", got["confidence"])
}

func TestHandler_AnalyzeWithoutEvidence(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	router := newTestRouter(analyzer, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, analyzer.bundle.IsEmpty())
}

func TestHandler_AnalyzeURLEncodedLink(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	router := newTestRouter(analyzer, 1<<20)

	form := url.Values{"link": {"https://jobs.example"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://jobs.example", analyzer.bundle.Link)
}

func TestHandler_EmptyFileIsIgnored(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	router := newTestRouter(analyzer, 1<<20)

	body, contentType := multipartBody(t, []upload{{field: "image", filename: "empty.png"}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, analyzer.bundle.Image)
}

func TestHandler_UploadTooLarge(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, 64)

	body, contentType := multipartBody(t, []upload{{field: "document", filename: "big.txt", content: strings.Repeat("x", 1024)}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
