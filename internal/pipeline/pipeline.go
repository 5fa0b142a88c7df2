// Package pipeline orchestrates one lead-collection run: sources are drained
// in their fixed order, one record at a time, through normalize → enrich →
// filter → persist → collect.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/enrich"
	"github.com/sells-group/leadfinder/internal/extract"
	"github.com/sells-group/leadfinder/internal/filter"
	"github.com/sells-group/leadfinder/internal/model"
	"github.com/sells-group/leadfinder/internal/source"
	"github.com/sells-group/leadfinder/internal/store"
)

// Pipeline runs the lead aggregation pass.
type Pipeline struct {
	cfg      *config.Config
	store    *store.Store // nil disables persistence
	enricher *enrich.Enricher
	sources  []source.Source
}

// New creates a Pipeline. A nil store disables persistence (dry runs, or
// save_to_db off); saved stays zero in that case.
func New(cfg *config.Config, st *store.Store, enricher *enrich.Enricher, sources []source.Source) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, enricher: enricher, sources: sources}
}

// Run executes a single pass over every enabled source. exportPath, when
// non-empty, overrides the configured export target. A run always completes
// with a summary; only store or export filesystem failures abort it.
func (p *Pipeline) Run(ctx context.Context, exportPath string) (*model.RunResult, error) {
	var (
		result    model.RunResult
		collected []model.Lead
	)

	for _, src := range p.sources {
		log := zap.L().With(zap.String("source", src.Name()))
		log.Info("collecting leads")

		for lead := range src.Leads(ctx) {
			result.Fetched++

			lead.Website = extract.NormalizeWebsite(lead.Website)

			if p.enricher != nil && p.cfg.Enrichment.FetchWebsiteForEmail && lead.Email == "" {
				lead = p.enricher.Lead(ctx, lead)
			}

			if !filter.Passes(lead, p.cfg.Filters) {
				continue
			}
			result.Kept++

			if p.store != nil {
				if err := p.store.Upsert(ctx, lead); err != nil {
					return nil, eris.Wrap(err, "pipeline: persist lead")
				}
				result.Saved++
			}
			collected = append(collected, lead)
		}
	}

	target := exportPath
	if target == "" && p.cfg.App.ExportOnRun {
		target = p.cfg.App.ExportPath
	}
	if target != "" {
		// With a store, export everything persisted so far; without one,
		// export exactly this run's kept leads.
		var err error
		if p.store != nil {
			err = p.store.ExportCSV(ctx, target)
		} else {
			err = store.WriteCSV(target, collected)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: export to %s", target)
		}
		result.ExportedTo = target
	}

	zap.L().Info("pipeline run complete",
		zap.Int("fetched", result.Fetched),
		zap.Int("kept", result.Kept),
		zap.Int("saved", result.Saved),
		zap.String("exported_to", result.ExportedTo),
	)
	return &result, nil
}
