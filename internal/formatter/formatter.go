// package formatter exports play history to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
)

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
)

// ParseFormat accepts a format name or its common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt", "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ".csv"
	case Markdown:
		return ".md"
	default:
		return ".txt"
	}
}

// FormatDuration renders milliseconds as m:ss, or "-" when unknown.
func FormatDuration(ms int) string {
	if ms <= 0 {
		return "-"
	}
	s := ms / 1000
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// PlaysToCSV writes one row per play with columns: Played At, Track ID, Title, Artist, Album, Duration, URL
func PlaysToCSV(plays []*models.Play) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Played At", "Track ID", "Title", "Artist", "Album", "Duration", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range plays {
		record := []string{
			p.PlayedAt.UTC().Format(time.RFC3339),
			p.TrackID,
			p.Title,
			p.Artist,
			p.Album,
			strconv.Itoa(p.Duration),
			p.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// PlaysToMarkdown renders plays as a numbered list, linking titles when a URL is known.
func PlaysToMarkdown(plays []*models.Play, title string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Plays**: %d\n\n", len(plays))

	for i, p := range plays {
		name := p.Title
		if p.URL != "" {
			name = fmt.Sprintf("[%s](%s)", p.Title, p.URL)
		}
		album := ""
		if p.Album != "" {
			album = fmt.Sprintf(" (%s)", p.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s] _%s_\n",
			i+1, p.Artist, name, album, FormatDuration(p.Duration), p.PlayedAt.UTC().Format("2006-01-02 15:04"))
	}
	return buf.Bytes(), nil
}

// PlaysToText renders one line per play.
func PlaysToText(plays []*models.Play) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range plays {
		fmt.Fprintf(&buf, "%s  %s - %s\n", p.PlayedAt.UTC().Format("2006-01-02 15:04"), p.Artist, p.Title)
	}
	return buf.Bytes(), nil
}

// Render encodes plays in format f.
func Render(f Format, plays []*models.Play) ([]byte, error) {
	switch f {
	case CSV:
		return PlaysToCSV(plays)
	case Markdown:
		return PlaysToMarkdown(plays, "Play history")
	default:
		return PlaysToText(plays)
	}
}

// WriteExport renders plays to path, creating parent directories.
//
// Defaults to plays{ext} in the working directory when path is empty.
func WriteExport(f Format, plays []*models.Play, path string) (string, error) {
	if path == "" {
		path = "plays" + f.Extension()
	}

	data, err := Render(f, plays)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
