package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/fjd/job-scam-detector/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Analyzer produces a report for an evidence bundle
type Analyzer interface {
	Analyze(ctx context.Context, bundle domain.EvidenceBundle) domain.FusedReport
}

// Multipart field names accepted by POST /analyze
const (
	fieldImage    = "image"
	fieldDocument = "document"
	fieldLink     = "link"
)

// Handler serves the report endpoint
type Handler struct {
	analyzer       Analyzer
	gatherer       prometheus.Gatherer
	maxUploadBytes int64
	log            *zap.SugaredLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(analyzer Analyzer, gatherer prometheus.Gatherer, maxUploadBytes int64, log *zap.SugaredLogger) *Handler {
	return &Handler{
		analyzer:       analyzer,
		gatherer:       gatherer,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Router builds the gin engine
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLog())

	router.POST("/analyze", h.analyze)
	router.GET("/healthz", h.healthz)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

// analyze accepts zero or more of image, document and link. It answers 200
// with a report even when nothing was supplied or nothing could be read.
func (h *Handler) analyze(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes)})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	bundle, err := h.readBundle(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	report := h.analyzer.Analyze(c.Request.Context(), bundle)
	c.JSON(http.StatusOK, report)
}

func (h *Handler) readBundle(c *gin.Context) (domain.EvidenceBundle, error) {
	var bundle domain.EvidenceBundle

	form, err := c.MultipartForm()
	switch {
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		// No form at all: an empty bundle, or a link-only urlencoded post
		bundle.Link = strings.TrimSpace(c.PostForm(fieldLink))
		return bundle, nil
	case err != nil:
		return bundle, fmt.Errorf("invalid multipart form: %w", err)
	}

	if bundle.Image, err = readFile(form, fieldImage); err != nil {
		return bundle, err
	}
	if bundle.Document, err = readFile(form, fieldDocument); err != nil {
		return bundle, err
	}
	if links := form.Value[fieldLink]; len(links) > 0 {
		bundle.Link = strings.TrimSpace(links[0])
	}
	return bundle, nil
}

func readFile(form *multipart.Form, field string) (*domain.Blob, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s upload: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &domain.Blob{Filename: fh.Filename, Data: data}, nil
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.log.Debugw("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}
