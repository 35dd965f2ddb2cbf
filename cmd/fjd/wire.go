package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fjd/job-scam-detector/internal/adapters/documents"
	"github.com/fjd/job-scam-detector/internal/adapters/lookup"
	"github.com/fjd/job-scam-detector/internal/adapters/ocr"
	"github.com/fjd/job-scam-detector/internal/adapters/oracle"
	"github.com/fjd/job-scam-detector/internal/adapters/recon"
	"github.com/fjd/job-scam-detector/internal/adapters/storage"
	"github.com/fjd/job-scam-detector/internal/application"
	"github.com/fjd/job-scam-detector/internal/config"
	"github.com/fjd/job-scam-detector/internal/domain/detection"
	"github.com/fjd/job-scam-detector/internal/metrics"
	"github.com/fjd/job-scam-detector/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app holds the wired service and everything that must be released on exit
type app struct {
	service  *application.AnalysisService
	registry *prometheus.Registry
	closers  []io.Closer
	log      *zap.SugaredLogger
}

// openOracle builds the text classifier
var openOracle = oracle.FromConfig

// Close drains pending report writes, then releases resources
func (a *app) Close() {
	a.service.Wait()
	a.release()
}

func (a *app) release() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warnw("Failed to release resource", "error", err)
		}
	}
}

// buildApp wires adapters into the analysis service
func buildApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (_ *app, err error) {
	a := &app{registry: prometheus.NewRegistry(), log: log}
	defer func() {
		if err != nil {
			a.release()
		}
	}()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	rules := detection.DefaultRuleSet()
	if cfg.Rules.Path != "" {
		loaded, err := detection.LoadRuleSet(cfg.Rules.Path)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		rules = loaded
		log.Infow("Loaded rule set", "path", cfg.Rules.Path,
			"fatal", len(rules.Fatal), "suspicious", len(rules.Suspicious))
	}

	// A classifier that fails to load degrades to the neutral probability
	classifier, err := openOracle(cfg.Oracle)
	if err != nil {
		log.Warnw("Text classifier unavailable, continuing with neutral probability",
			"kind", cfg.Oracle.Kind, "error", err)
	} else {
		log.Infow("Text classifier loaded", "kind", cfg.Oracle.Kind)
	}
	if c, ok := classifier.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	if cfg.OCR.APIKey == "" {
		log.Warnw("GOOGLE_API_KEY not set, image evidence will not be read")
	}
	imageOCR := ocr.NewGeminiClient(cfg.OCR.Endpoint, cfg.OCR.APIKey, cfg.OCR.Models, cfg.OCR.Timeout, cfg.OCR.MaxAttempts, log)
	docs := documents.NewParser(int(cfg.Server.MaxUploadBytes))
	pages := recon.NewPageRecon(cfg.Recon.Timeout, cfg.Recon.MaxBodyBytes, cfg.Recon.UserAgent)

	blacklist, err := lookup.LoadBlacklist(cfg.Lookups.BlacklistPath)
	if err != nil {
		return nil, err
	}
	log.Infow("Blacklist loaded", "entries", blacklist.Len())

	strategies := []detection.SignalStrategy{
		detection.NewEvidenceFileStrategy(),
		detection.NewBlacklistStrategy(blacklist),
		detection.NewDomainAgeStrategy(lookup.NewWhoisAge(cfg.Lookups.WhoisTimeout)),
		detection.NewContentReconStrategy(classifier),
	}

	reports, err := openReportLog(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	if reports != nil {
		a.closers = append(a.closers, reports)
	}

	a.service = application.NewAnalysisService(
		application.NewAggregator(imageOCR, docs, pages, cfg.Timeouts.Extraction, log, m),
		classifier,
		detection.NewVetoEngine(rules),
		detection.NewIdentityValidator(rules, lookup.NewDNSResolver(cfg.Lookups.DNSTimeout)),
		strategies,
		detection.NewFusionEngine(),
		reports,
		application.Options{
			NeutralProbability: cfg.Oracle.NeutralProbability,
			SignalTimeout:      cfg.Timeouts.Signals,
			WriteTimeout:       cfg.Storage.WriteTimeout,
		},
		log,
		m,
	)
	return a, nil
}

// openReportLog returns nil when persistence is disabled
func openReportLog(ctx context.Context, sc config.StorageConfig, log *zap.SugaredLogger) (ports.ReportLog, error) {
	switch sc.Sink {
	case "postgres":
		store, err := storage.NewPostgresStore(sc.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.InitSchema(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		log.Infow("Report log: PostgreSQL")
		return store, nil
	case "redis":
		stream, err := storage.NewRedisLog(ctx, sc.RedisAddr, sc.RedisStream, 0)
		if err != nil {
			return nil, err
		}
		log.Infow("Report log: Redis stream", "stream", sc.RedisStream)
		return stream, nil
	default:
		return nil, nil
	}
}
