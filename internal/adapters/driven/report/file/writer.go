// Package file writes physician reports as Markdown files, one per report.
//
// Each file starts with a YAML front matter block carrying the report
// metadata, so the directory itself can be listed as an archive.
package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.ReportArchive = (*Writer)(nil)

const (
	timestampLayout = "20060102_150405"
	frontMatterSep  = "---"
	reportExt       = ".md"
)

// Writer stores reports under a directory.
type Writer struct {
	dir string
}

// frontMatter is the metadata header of a report file.
type frontMatter struct {
	ID          string    `yaml:"id"`
	SessionID   string    `yaml:"session_id"`
	DisplayName string    `yaml:"display_name"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// NewWriter creates a writer for dir. The directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the report directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Close is a no-op; the writer holds no open files between calls.
func (w *Writer) Close() error {
	return nil
}

// Write stores the report as <name>_report_<YYYYMMDD_HHMMSS>.md and returns its path.
func (w *Writer) Write(_ context.Context, report domain.Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	content, err := render(report)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s_report_%s", safeName(report.DisplayName), report.CreatedAt.Format(timestampLayout))
	path := filepath.Join(w.dir, base+reportExt)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		path = filepath.Join(w.dir, base+"_"+shortID(report.ID)+reportExt)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	}
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}

	logger.Debug("Wrote report %s", path)
	return path, nil
}

// ListReports returns reports newest first, without their text.
func (w *Writer) ListReports(_ context.Context, limit int) ([]domain.Report, error) {
	paths, err := filepath.Glob(filepath.Join(w.dir, "*"+reportExt))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]domain.Report, 0, len(paths))
	for _, path := range paths {
		report, err := readReport(path)
		if err != nil {
			logger.Warn("Skipping report %s: %v", path, err)
			continue
		}
		report.Text = ""
		reports = append(reports, *report)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// GetReport finds a report by id.
func (w *Writer) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	paths, err := filepath.Glob(filepath.Join(w.dir, "*"+reportExt))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	for _, path := range paths {
		report, err := readReport(path)
		if err != nil {
			continue
		}
		if report.ID == id {
			return report, nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
}

func render(report domain.Report) ([]byte, error) {
	meta, err := yaml.Marshal(frontMatter{
		ID:          report.ID,
		SessionID:   report.SessionID,
		DisplayName: report.DisplayName,
		CreatedAt:   report.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal report metadata: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(frontMatterSep + "\n")
	b.Write(meta)
	b.WriteString(frontMatterSep + "\n")
	fmt.Fprintf(&b, "# Patient Report - %s\n\n", report.DisplayName)
	b.WriteString(strings.TrimSpace(report.Text))
	b.WriteString("\n")
	return b.Bytes(), nil
}

// readReport parses a report file written by render.
func readReport(path string) (*domain.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() || scanner.Text() != frontMatterSep {
		return nil, errors.New("missing front matter")
	}

	var header bytes.Buffer
	closed := false
	for scanner.Scan() {
		if scanner.Text() == frontMatterSep {
			closed = true
			break
		}
		header.WriteString(scanner.Text() + "\n")
	}
	if !closed {
		return nil, errors.New("unterminated front matter")
	}

	var meta frontMatter
	if err := yaml.Unmarshal(header.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	var body strings.Builder
	for scanner.Scan() {
		body.WriteString(scanner.Text() + "\n")
	}
	text := strings.TrimSpace(body.String())
	text = strings.TrimSpace(strings.TrimPrefix(text, "# Patient Report - "+meta.DisplayName))

	return &domain.Report{
		ID:          meta.ID,
		SessionID:   meta.SessionID,
		DisplayName: meta.DisplayName,
		Text:        text,
		Location:    path,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

// safeName replaces anything but letters, digits, dashes and dots with an underscore.
func safeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultDisplayName
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, strings.Trim(name, "."))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return id
}
