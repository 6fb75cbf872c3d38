// package formatter renders comparison results as plain text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
)

// Format names an output format.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "text", "txt", "plain":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case Markdown:
		return ".md"
	case CSV:
		return ".csv"
	case JSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Vibe is the headline verdict for a compatibility score.
type Vibe struct {
	Label string
	Emoji string
}

// VibeFor maps a compatibility score (0-100) to its verdict.
func VibeFor(score float64) Vibe {
	switch {
	case score >= 80:
		return Vibe{"Musical Soulmates", "🔥"}
	case score >= 60:
		return Vibe{"Kindred Ears", "✨"}
	case score >= 40:
		return Vibe{"Common Ground", "🎵"}
	case score >= 20:
		return Vibe{"Different Worlds", "🌍"}
	default:
		return Vibe{"Total Opposites", "❄️"}
	}
}

// Score formats a compatibility score, keeping one decimal below 1%.
func Score(score float64) string {
	if score < 1 {
		return strconv.FormatFloat(score, 'f', 1, 64)
	}
	return strconv.FormatFloat(score, 'f', -1, 64)
}

var sets = []models.Set{models.OnlyA, models.OnlyB, models.Common}

// Render encodes c in the given format.
func Render(c *models.Comparison, format Format) ([]byte, error) {
	switch format {
	case Text:
		return ExportToText(c)
	case Markdown:
		return ExportToMarkdown(c, "")
	case CSV:
		return ExportToCSV(c)
	case JSON:
		return shared.MarshalJSON(c, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts a Comparison to CSV with columns: Set, ID, Name, Artists, Album, Preview URL, External URL
func ExportToCSV(c *models.Comparison) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Set", "ID", "Name", "Artists", "Album", "Preview URL", "External URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, set := range sets {
		for _, track := range c.Tracks(set) {
			record := []string{
				set.String(),
				track.ID,
				track.Name,
				track.ArtistNames(),
				track.Album,
				track.PreviewURL,
				track.ExternalURL,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Comparison to Markdown with an optional cover image
func ExportToMarkdown(c *models.Comparison, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	vibe := VibeFor(c.Stats.CompatibilityScore)

	fmt.Fprintf(&buf, "# %s × %s\n\n", c.UserA.DisplayName, c.UserB.DisplayName)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Compatibility**: %s%% %s %s\n\n", Score(c.Stats.CompatibilityScore), vibe.Emoji, vibe.Label)

	buf.WriteString("| | Songs |\n|---|---|\n")
	fmt.Fprintf(&buf, "| %s | %d |\n", c.UserA.DisplayName, c.Stats.TotalA)
	fmt.Fprintf(&buf, "| %s | %d |\n", c.UserB.DisplayName, c.Stats.TotalB)
	fmt.Fprintf(&buf, "| In common | %d |\n\n", c.Stats.CommonCount)

	for _, set := range sets {
		tracks := c.Tracks(set)
		fmt.Fprintf(&buf, "## %s (%d)\n\n", c.Label(set), len(tracks))
		for i, track := range tracks {
			albumPart := ""
			if track.Album != "" {
				albumPart = fmt.Sprintf(" (%s)", track.Album)
			}
			name := track.Name
			if track.ExternalURL != "" {
				name = fmt.Sprintf("[%s](%s)", track.Name, track.ExternalURL)
			}
			fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, track.ArtistNames(), name, albumPart)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Comparison to plain text
func ExportToText(c *models.Comparison) ([]byte, error) {
	var buf bytes.Buffer
	vibe := VibeFor(c.Stats.CompatibilityScore)

	fmt.Fprintf(&buf, "%s vs %s\n", c.UserA.DisplayName, c.UserB.DisplayName)
	fmt.Fprintf(&buf, "Compatibility: %s%% (%s)\n", Score(c.Stats.CompatibilityScore), vibe.Label)
	fmt.Fprintf(&buf, "Songs: %d / %d, in common: %d\n", c.Stats.TotalA, c.Stats.TotalB, c.Stats.CommonCount)

	for _, set := range sets {
		tracks := c.Tracks(set)
		fmt.Fprintf(&buf, "\n%s (%d)\n", c.Label(set), len(tracks))
		for i, track := range tracks {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.ArtistNames(), track.Name)
		}
	}

	return buf.Bytes(), nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// DefaultFilename is "<A>-vs-<B>-VibeSync" plus the format's extension.
func DefaultFilename(c *models.Comparison, format Format) string {
	clean := func(s string) string {
		s = unsafeName.ReplaceAllString(s, "_")
		if s == "" {
			return "unknown"
		}
		return s
	}
	return fmt.Sprintf("%s-vs-%s-VibeSync%s", clean(c.UserA.DisplayName), clean(c.UserB.DisplayName), format.Ext())
}

// WriteExport renders c and writes it to path, defaulting to [DefaultFilename] in the working directory.
func WriteExport(c *models.Comparison, format Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(c, format)
	}

	data, err := Render(c, format)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes a comparison to {dir}/README.md, with the album art of the first shared track saved
// as {dir}/cover.jpg when withCover is set.
//
// A cover that cannot be downloaded is skipped with a warning on stderr.
func WriteMarkdownExport(c *models.Comparison, outputDir string, withCover bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = strings.TrimSuffix(DefaultFilename(c, Markdown), Markdown.Ext())
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if withCover {
		if art := coverArt(c); art != "" {
			imageData, err := DownloadImage(art)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
			} else {
				coverImageFilename = "cover.jpg"
				coverImagePath := filepath.Join(outputDir, coverImageFilename)
				if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
					coverImageFilename = ""
				} else {
					result.CoverImage = coverImagePath
					result.Files = append(result.Files, coverImagePath)
				}
			}
		}
	}

	mdData, err := ExportToMarkdown(c, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

func coverArt(c *models.Comparison) string {
	for _, set := range []models.Set{models.Common, models.OnlyA, models.OnlyB} {
		for _, track := range c.Tracks(set) {
			if track.AlbumArt != "" {
				return track.AlbumArt
			}
		}
	}
	return ""
}
