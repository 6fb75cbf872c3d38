package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/vibesync/internal/formatter"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
	"github.com/desertthunder/vibesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	RoomCode  string    `json:"room_code"`
	UserA     string    `json:"user_a"`
	UserB     string    `json:"user_b"`
	Score     float64   `json:"compatibility_score"`
	Common    int       `json:"common_count"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryList prints saved comparisons, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.history()
	if err != nil {
		return err
	}

	records, err := repo.List(map[string]any{
		"room_code": cmd.String("code"),
		"limit":     int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	entries := make([]historyEntry, 0, len(records))
	for _, record := range records {
		c := record.Comparison()
		entries = append(entries, historyEntry{
			ID:        record.ID(),
			Number:    record.Sequence(),
			RoomCode:  record.RoomCode().String(),
			UserA:     c.UserA.DisplayName,
			UserB:     c.UserB.DisplayName,
			Score:     c.Stats.CompatibilityScore,
			Common:    c.Stats.CommonCount,
			CreatedAt: record.CreatedAt(),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No saved comparisons\n")
	}

	r.writePlainHeader(fmt.Sprintf("Saved comparisons (%d)", len(entries)))
	for _, e := range entries {
		vibe := formatter.VibeFor(e.Score)
		r.writePlain("#%d  %s  %s  %s vs %s  %s%% %s  (%d in common)\n",
			e.Number, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.RoomCode,
			e.UserA, e.UserB, formatter.Score(e.Score), vibe.Emoji, e.Common)
	}
	return nil
}

// HistoryShow renders a saved comparison, addressed by id or number.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	record, err := r.findRecord(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	c := record.Comparison()
	if output := cmd.String("output"); output != "" {
		return r.export(&c, format, output, false)
	}

	if format == formatter.Text {
		r.writePlain("Room %s • %s\n", record.RoomCode(), record.CreatedAt().Local().Format(time.RFC1123))
		return r.printComparison(&c, []models.Set{models.OnlyA, models.OnlyB, models.Common}, 1)
	}

	data, err := formatter.Render(&c, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// HistoryExport writes every saved comparison to a directory with a manifest, printing progress as it goes.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.history()
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	records, err := repo.List(map[string]any{"room_code": cmd.String("code")})
	if err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, len(records)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlainln("%s", update.Message)
		}
	}()

	result, err := tasks.NewExporter(r.logger).BulkExport(ctx, prog, records, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		WithCover:  cmd.Bool("cover"),
	})
	close(prog)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.Successful, result.Total)
	if result.Failed > 0 {
		r.writePlain("Failed: %d\n", result.Failed)
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

// HistoryDelete removes a saved comparison, addressed by id or number.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	record, err := r.findRecord(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	repo, err := r.history()
	if err != nil {
		return err
	}
	if err := repo.Delete(record.ID()); err != nil {
		return err
	}

	r.logger.Info("deleted comparison", "id", record.ID())
	return r.writePlain("✓ Deleted comparison #%d\n", record.Sequence())
}

// findRecord resolves a record id, falling back to the sequence number for numeric arguments.
func (r *Runner) findRecord(ref string) (*models.ComparisonRecord, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: comparison id", shared.ErrMissingArgument)
	}

	repo, err := r.history()
	if err != nil {
		return nil, err
	}

	if seq, err := strconv.Atoi(ref); err == nil {
		return repo.GetBySequence(seq)
	}
	return repo.Get(ref)
}
