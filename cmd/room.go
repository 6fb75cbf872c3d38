package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/desertthunder/vibesync/internal/formatter"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// RoomCreate requests a room owned by the current session and prints its code.
func (r *Runner) RoomCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLogin(); err != nil {
		return err
	}

	code, err := r.machine.RequestCode(ctx)
	if err != nil {
		return r.sessionError(err)
	}
	state := r.machine.State()

	r.writePlain("Your room code: %s\n", code)
	if state.ExpiresInMinutes > 0 {
		r.writePlain("Expires in %d minutes\n", state.ExpiresInMinutes)
	}

	if cmd.Bool("copy") {
		if err := copyToClipboard(code.String()); err != nil {
			r.logger.Warn("failed to copy room code", "error", err)
			r.writePlain("⚠ Could not copy to clipboard\n")
		} else {
			r.writePlain("✓ Copied\n")
		}
	}

	return r.writePlainln("Share it with a friend: vibesync room join %s", code)
}

// RoomCheck probes whether a room code is open without joining it.
func (r *Runner) RoomCheck(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("code")
	if raw == "" {
		return fmt.Errorf("%w: room code", shared.ErrMissingArgument)
	}

	r.machine.SetInput(raw)
	code := r.machine.State().Input

	check, err := r.machine.Check(ctx)
	if err != nil {
		return err
	}

	if !check.Valid {
		return r.writePlain("✗ No open room with code %s\n", code)
	}
	if check.Host != "" {
		return r.writePlain("✓ Room %s is open (host: %s)\n", code, check.Host)
	}
	return r.writePlain("✓ Room %s is open\n", code)
}

// RoomJoin compares libraries with the owner of a room code and prints or exports the result.
func (r *Runner) RoomJoin(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("code")
	if raw == "" {
		return fmt.Errorf("%w: room code", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	sets := []models.Set{models.OnlyA, models.OnlyB, models.Common}
	if name := cmd.String("set"); name != "" {
		set, ok := models.ParseSet(name)
		if !ok {
			return fmt.Errorf("%w: unknown set %q", shared.ErrInvalidArgument, name)
		}
		sets = []models.Set{set}
	}

	if err := r.requireLogin(); err != nil {
		return err
	}

	r.machine.SetInput(raw)
	r.logger.Debug("joining room", "code", r.machine.State().Input)

	result, err := r.machine.Submit(ctx)
	if err != nil {
		return r.sessionError(err)
	}

	c := formatter.Filter(result, strings.TrimSpace(cmd.String("search")))

	if output := cmd.String("output"); output != "" {
		return r.export(c, format, output, cmd.Bool("cover"))
	}

	if format != formatter.Text {
		data, err := formatter.Render(c, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	return r.printComparison(c, sets, int(cmd.Int("page")))
}

// export writes c to output. A markdown export to a directory also gets a README and, optionally, cover art.
func (r *Runner) export(c *models.Comparison, format formatter.Format, output string, withCover bool) error {
	if info, err := os.Stat(output); format == formatter.Markdown && (withCover || (err == nil && info.IsDir())) {
		result, err := formatter.WriteMarkdownExport(c, output, withCover)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	if info, err := os.Stat(output); err == nil && info.IsDir() {
		output = filepath.Join(output, formatter.DefaultFilename(c, format))
	}

	path, err := formatter.WriteExport(c, format, output)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Exported to %s\n", path)
}

// printComparison writes the vibe card and the first pages of each requested set.
func (r *Runner) printComparison(c *models.Comparison, sets []models.Set, page int) error {
	vibe := formatter.VibeFor(c.Stats.CompatibilityScore)
	r.writePlainHeader(fmt.Sprintf("%s %s", vibe.Emoji, vibe.Label))
	r.writePlain("%s%% compatible • %s & %s\n", formatter.Score(c.Stats.CompatibilityScore),
		c.UserA.DisplayName, c.UserB.DisplayName)
	r.writePlain("%d only you • %d only %s • %d in common\n",
		c.Stats.OnlyACount, c.Stats.OnlyBCount, c.UserB.DisplayName, c.Stats.CommonCount)

	for _, set := range sets {
		tracks, remaining := formatter.Page(c.Tracks(set), page)
		r.writePlainln("%s (%d)", c.Label(set), len(c.Tracks(set)))
		if len(tracks) == 0 {
			r.writePlain("  (none)\n")
			continue
		}
		for i, track := range tracks {
			r.writePlain("%d. %s - %s\n", i+1, track.ArtistNames(), track.Name)
		}
		if remaining > 0 {
			r.writePlain("  … %d more (use --page %d)\n", remaining, page+1)
		}
	}
	return nil
}
