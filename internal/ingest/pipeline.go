package ingest

import (
	"context"

	"go.uber.org/zap"
)

// ToolInfo is everything the pipeline derives for a brand-new domain.
type ToolInfo struct {
	Domain   string
	Name     string
	Category string
	Logo     string
}

// Runner runs the ingestion pipeline for a domain. It is what the
// orchestrator depends on, so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, domain string) (ToolInfo, error)
}

// Pipeline composes the prober, extractor, and favicon fetcher.
// Reachability runs first so a dead domain fails fast before the paid
// content-fetch and completion calls burn quota.
type Pipeline struct {
	prober    *Prober
	extractor *Extractor
	favicons  *FaviconFetcher
	logger    *zap.Logger
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(prober *Prober, extractor *Extractor, favicons *FaviconFetcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		prober:    prober,
		extractor: extractor,
		favicons:  favicons,
		logger:    logger,
	}
}

// Run executes probe, metadata extraction, and favicon resolution in that
// fixed order, aborting on the first failure.
func (p *Pipeline) Run(ctx context.Context, domain string) (ToolInfo, error) {
	if err := p.prober.Probe(ctx, domain); err != nil {
		TotalProbeFailures.Inc()
		p.logger.Warn("domain probe failed", zap.String("domain", domain), zap.Error(err))
		return ToolInfo{}, err
	}

	meta, err := p.extractor.Extract(ctx, domain)
	if err != nil {
		TotalExtractionFailures.Inc()
		p.logger.Warn("metadata extraction failed", zap.String("domain", domain), zap.Error(err))
		return ToolInfo{}, err
	}

	logo, err := p.favicons.Fetch(ctx, domain)
	if err != nil {
		TotalFaviconFailures.Inc()
		p.logger.Error("favicon fetch failed", zap.String("domain", domain), zap.Error(err))
		return ToolInfo{}, err
	}

	TotalIngested.Inc()
	return ToolInfo{
		Domain:   domain,
		Name:     meta.Name,
		Category: meta.Category,
		Logo:     logo,
	}, nil
}
