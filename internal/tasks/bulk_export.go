package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vibesync/internal/formatter"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
	"golang.org/x/time/rate"
)

const manifestFilename = "export_manifest.json"

// BulkExportOpts contains configuration for bulk comparison exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: text, markdown, csv, json
	OutputDir  string           // Base output directory (default: vibesync_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 5, max: 10)
	RateLimit  float64          // Cover downloads per second (default: 5)
	WithCover  bool             // Download cover art next to markdown exports
}

// ExportResult describes the export of a single saved comparison.
type ExportResult struct {
	ID      string   `json:"id"`
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Success bool     `json:"success"`
	Files   []string `json:"files"`
	Error   error    `json:"-"`
	Reason  string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run and is written to the manifest.
type BulkExportResult struct {
	Total           int            `json:"total"`
	Successful      int            `json:"successful"`
	Failed          int            `json:"failed"`
	Format          string         `json:"format"`
	OutputDirectory string         `json:"output_directory"`
	ExportedAt      time.Time      `json:"exported_at"`
	Results         []ExportResult `json:"results"`
	ManifestPath    string         `json:"-"`
}

type exportJob struct {
	step   int
	record *models.ComparisonRecord
}

// Exporter runs bulk exports of saved comparisons.
type Exporter struct {
	logger *log.Logger
}

// NewExporter creates an exporter. A nil logger discards output.
func NewExporter(logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Exporter{logger: logger.WithPrefix("export")}
}

// BulkExport writes records concurrently with a worker pool and reports progress on prog.
//
// Failures of individual comparisons are recorded in the result and never abort the run. The manifest is written
// once every worker has finished.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	records []*models.ComparisonRecord,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no saved comparisons to export", shared.ErrRecordNotFound)
	}

	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("vibesync_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(records)
	result := &BulkExportResult{
		Total:           total,
		Format:          string(opts.Format),
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]ExportResult, 0, total),
	}

	var limiter *rate.Limiter
	if opts.WithCover && opts.Format == formatter.Markdown {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan exportJob, total)
	results := make(chan ExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		sendProgress(prog, queueExportsUpdate(total))
		for i, record := range records {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- exportJob{step: i + 1, record: record}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.Successful++
			sendProgress(prog, exportCompletedUpdate(completed, total, res.Name, len(res.Files)))
		} else {
			result.Failed++
			res.Reason = res.Error.Error()
			e.logger.Warn("comparison export failed", "id", res.ID, "error", res.Error)
			sendProgress(prog, exportFailedUpdate(completed, total, res.Name, res.Error))
		}
		result.Results = append(result.Results, res)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestFilename)
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(total, manifestPath))

	e.logger.Info("bulk export finished", "total", total, "failed", result.Failed, "dir", opts.OutputDir)
	return result, nil
}

// exportWorker drains jobs until the channel closes or ctx is cancelled.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- ExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- e.exportOne(job, opts)
	}
}

// exportOne writes a single comparison. Each file is prefixed with the comparison number so that repeated
// comparisons between the same pair never collide.
func (e *Exporter) exportOne(j exportJob, opts BulkExportOpts) ExportResult {
	c := j.record.Comparison()
	name := fmt.Sprintf("%s vs %s", c.UserA.DisplayName, c.UserB.DisplayName)
	result := ExportResult{
		ID:     j.record.ID(),
		Number: j.record.Sequence(),
		Name:   name,
		Files:  []string{},
	}
	base := fmt.Sprintf("%03d-%s", j.record.Sequence(), formatter.DefaultFilename(&c, opts.Format))

	e.logger.Debug("exporting comparison", "step", j.step, "id", result.ID)

	if opts.Format == formatter.Markdown {
		dir := filepath.Join(opts.OutputDir, strings.TrimSuffix(base, opts.Format.Ext()))
		md, err := formatter.WriteMarkdownExport(&c, dir, opts.WithCover)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = md.Files
		result.Success = true
		return result
	}

	path, err := formatter.WriteExport(&c, opts.Format, filepath.Join(opts.OutputDir, base))
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = []string{path}
	result.Success = true
	return result
}
