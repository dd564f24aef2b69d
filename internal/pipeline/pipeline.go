// Package pipeline orchestrates the normalization and scoring stages:
// reconcile → expand → canonicalize per source file (in parallel), a merge
// barrier, then merge → score → dataset build.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lawatlas/disaster-law-etl/internal/config"
	"github.com/lawatlas/disaster-law-etl/internal/dataset"
	"github.com/lawatlas/disaster-law-etl/internal/domain"
	"github.com/lawatlas/disaster-law-etl/internal/observability"
)

// RowSource yields one source file's rows as untyped key→value mappings.
// Cell-grid parsing lives in the ingest adapters; the pipeline never touches
// files directly.
type RowSource interface {
	// Name returns the source file's base name, matched against the
	// mapping table's patterns.
	Name() string
	// Rows reads every data row of the file.
	Rows() ([]domain.RawRow, error)
}

// Pipeline runs the batch transformation. All stages are pure functions of
// their inputs plus the read-only configuration tables, so a full re-run is
// the recovery mechanism for partial failures.
type Pipeline struct {
	mappings config.MappingTable
	set      *domain.JurisdictionSet
	rules    domain.RuleTable
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline with the given configuration tables and observability.
func New(mappings config.MappingTable, set *domain.JurisdictionSet, rules domain.RuleTable, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		mappings: mappings,
		set:      set,
		rules:    rules,
		logger:   logger,
		metrics:  metrics,
	}
}

// fileResult carries one file's stage 1–3 output to the merge barrier.
type fileResult struct {
	file       string
	canonical  []domain.CanonicalRow
	unresolved []domain.Unresolved
}

// Run processes every source through the full pipeline and returns the
// finalized dataset. Files are processed concurrently with isolated
// intermediate state; results join at the merge barrier. Row-level failures
// never abort the run — they land in the dataset's unresolved report.
func (p *Pipeline) Run(ctx context.Context, sources []RowSource) (*dataset.Dataset, error) {
	p.logger.Info("pipeline started", "files", len(sources))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	results := make(chan fileResult, len(sources))
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src RowSource) {
			defer wg.Done()
			results <- p.processFile(ctx, src)
		}(src)
	}
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline cancelled: %w", err)
	}

	// Merge barrier: the merger needs every canonical row for a
	// jurisdiction before it can finalize the record.
	var canonical []domain.CanonicalRow
	var unresolved []domain.Unresolved
	for res := range results {
		canonical = append(canonical, res.canonical...)
		unresolved = append(unresolved, res.unresolved...)
	}

	records := domain.Merge(canonical, p.mappings.Policy())
	for i := range records {
		for _, fv := range records[i].Fields {
			p.metrics.MergeConflicts.Add(float64(len(fv.Discarded)))
		}
		domain.Score(&records[i], p.rules)
	}

	ds, err := dataset.Build(records, unresolved, p.set)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}

	p.metrics.DatasetJurisdictions.Set(float64(ds.Len()))
	p.logger.Info("pipeline finished",
		"jurisdictions", ds.Len(),
		"canonical_rows", len(canonical),
		"unresolved", len(unresolved),
	)
	return ds, nil
}

// processFile runs reconcile, expand, and canonicalize over one file.
func (p *Pipeline) processFile(ctx context.Context, src RowSource) fileResult {
	start := time.Now()
	res := fileResult{file: src.Name()}
	defer func() {
		p.metrics.FileProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	mapping, ok := p.mappings.ForFile(src.Name())
	if !ok {
		err := &domain.SchemaError{SourceFile: src.Name()}
		p.logger.Warn("file skipped", "error", err)
		p.metrics.FilesSkipped.Inc()
		res.unresolved = append(res.unresolved, domain.Unresolved{
			SourceFile: src.Name(),
			Stage:      domain.StageReconcile,
			Reason:     err.Error(),
		})
		return res
	}

	rows, err := src.Rows()
	if err != nil {
		p.logger.Warn("file skipped", "file", src.Name(), "error", err)
		p.metrics.FilesSkipped.Inc()
		res.unresolved = append(res.unresolved, domain.Unresolved{
			SourceFile: src.Name(),
			Stage:      domain.StageReconcile,
			Reason:     fmt.Sprintf("read rows: %v", err),
		})
		return res
	}
	p.metrics.RowsIngested.Add(float64(len(rows)))

	for _, raw := range rows {
		if ctx.Err() != nil {
			return res
		}
		p.processRow(raw, mapping, &res)
	}

	p.logger.Debug("file processed",
		"file", src.Name(),
		"rows", len(rows),
		"canonical", len(res.canonical),
		"unresolved", len(res.unresolved),
	)
	return res
}

// processRow takes one raw row through stages 1–3, appending canonical rows
// and unresolved entries to res.
func (p *Pipeline) processRow(raw domain.RawRow, mapping domain.FileMapping, res *fileResult) {
	norm := domain.Reconcile(raw, mapping)
	p.metrics.RowsNormalized.Inc()

	if domain.IsNoiseRef(norm.JurisdictionRef) {
		p.metrics.RowsSkipped.Inc()
		return
	}

	expanded, ambiguous, err := domain.Expand(norm, p.set)
	if err != nil {
		p.recordUnresolved(res, domain.Unresolved{
			SourceFile: norm.SourceFile,
			RawText:    norm.JurisdictionRef,
			Stage:      domain.StageExpand,
			Reason:     err.Error(),
		})
		return
	}
	if ambiguous {
		// The named jurisdictions are kept; the trailing token is flagged
		// for review instead of being expanded into guessed records.
		p.recordUnresolved(res, domain.Unresolved{
			SourceFile: norm.SourceFile,
			RawText:    norm.JurisdictionRef,
			Stage:      domain.StageExpand,
			Reason:     `reference trails off ("etc."/"others"); unnamed jurisdictions not expanded`,
		})
	}
	p.metrics.RowsExpanded.Add(float64(len(expanded)))

	for _, jr := range expanded {
		canon, err := domain.Canonicalize(jr, p.set)
		if err != nil {
			p.recordUnresolved(res, domain.Unresolved{
				SourceFile: jr.SourceFile,
				RawText:    jr.Jurisdiction,
				Stage:      domain.StageCanonicalize,
				Reason:     err.Error(),
			})
			continue
		}
		res.canonical = append(res.canonical, canon)
	}
}

func (p *Pipeline) recordUnresolved(res *fileResult, u domain.Unresolved) {
	p.logger.Warn("row unresolved", "file", u.SourceFile, "stage", u.Stage, "raw", u.RawText, "reason", u.Reason)
	p.metrics.UnresolvedRows.WithLabelValues(u.Stage).Inc()
	res.unresolved = append(res.unresolved, u)
}
