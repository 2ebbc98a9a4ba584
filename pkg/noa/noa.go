package noa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	archive "github.com/entisia/go-noa/internal/noa"
	"github.com/entisia/go-noa/internal/report"
)

// Stage represents a coarse progress stage for Extract.
type Stage string

const (
	StageStarting   Stage = "starting"
	StageOpened     Stage = "opened"
	StageExtracting Stage = "extracting"
	StageDone       Stage = "done"
)

// ProgressEvent is emitted when Extract transitions between phases and once
// per written entry.
type ProgressEvent struct {
	Stage      Stage
	Path       string
	Entry      string
	Index      int
	Total      int
	Bytes      int64
	Elapsed    time.Duration
	OccurredAt time.Time
}

// Sentinel errors re-exported so callers can branch without importing
// internal packages.
var (
	ErrNotNOA    = archive.ErrNotNOA
	ErrMalformed = archive.ErrMalformed
	ErrTruncated = archive.ErrTruncated
)

// Options configure one List or Extract call for a single archive file.
type Options struct {
	Path      string
	Password  string
	BlockKey  []byte
	Pattern   string
	OutputDir string
	// RawPayloads skips decryption and writes entries as stored.
	RawPayloads bool
	OnProgress  func(ProgressEvent)
}

// EntryInfo describes one archive entry.
type EntryInfo struct {
	Name      string
	Size      int64
	Offset    int64
	Encrypted bool
	Type      string
}

// ArchiveInfo contains top-level archive metadata.
type ArchiveInfo struct {
	Path         string
	EntryCount   int
	TotalSize    int64
	HasEncrypted bool
}

// Result contains structured output from List or Extract.
type Result struct {
	Archive   ArchiveInfo
	Entries   []EntryInfo
	Extracted int
	Summary   string
}

// List opens the archive at options.Path and returns its entry table
// without touching any payload.
func List(ctx context.Context, options Options) (Result, error) {
	a, entries, err := open(ctx, options)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()
	return buildResult(options.Path, a, entries, 0), nil
}

// ReadFile returns the decoded payload of a single entry by path name.
func ReadFile(ctx context.Context, options Options, name string) ([]byte, error) {
	a, _, err := open(ctx, options)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	e := a.Find(name)
	if e == nil {
		return nil, fmt.Errorf("entry %q not found", name)
	}
	r, err := a.OpenEntry(e)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// Extract writes every matching entry under options.OutputDir, creating
// directories as needed. Entry paths are kept relative to the output
// directory; anything that would escape it is rejected.
func Extract(ctx context.Context, options Options) (Result, error) {
	start := time.Now()
	emit(options.OnProgress, ProgressEvent{
		Stage:      StageStarting,
		Path:       options.Path,
		OccurredAt: time.Now(),
	})

	a, entries, err := open(ctx, options)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()

	emit(options.OnProgress, ProgressEvent{
		Stage:      StageOpened,
		Path:       options.Path,
		Total:      len(entries),
		OccurredAt: time.Now(),
	})

	outDir := options.OutputDir
	if outDir == "" {
		outDir = "."
	}

	extracted := 0
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		dest, err := safeJoin(outDir, e.Name)
		if err != nil {
			return Result{}, err
		}
		n, err := extractEntry(a, e, dest)
		if err != nil {
			return Result{}, fmt.Errorf("extract %q: %w", e.Name, err)
		}
		extracted++

		emit(options.OnProgress, ProgressEvent{
			Stage:      StageExtracting,
			Path:       options.Path,
			Entry:      e.Name,
			Index:      i + 1,
			Total:      len(entries),
			Bytes:      n,
			Elapsed:    time.Since(start),
			OccurredAt: time.Now(),
		})
	}

	emit(options.OnProgress, ProgressEvent{
		Stage:      StageDone,
		Path:       options.Path,
		Total:      len(entries),
		Elapsed:    time.Since(start),
		OccurredAt: time.Now(),
	})

	return buildResult(options.Path, a, entries, extracted), nil
}

func open(ctx context.Context, options Options) (*archive.Archive, []*archive.Entry, error) {
	if options.Path == "" {
		return nil, nil, errors.New("path is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	opts := archive.Options{Password: options.Password, BlockKey: options.BlockKey}
	if options.RawPayloads {
		opts.Password = ""
		opts.BlockKey = nil
	}
	a, err := archive.Open(options.Path, opts)
	if err != nil {
		return nil, nil, err
	}

	entries, err := report.Filter(a.Entries, options.Pattern)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, entries, nil
}

func extractEntry(a *archive.Archive, e *archive.Entry, dest string) (int64, error) {
	r, err := a.OpenEntry(e)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// safeJoin resolves name beneath dir, rejecting absolute names and parent
// traversal.
func safeJoin(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry name %q escapes the output directory", name)
	}
	return filepath.Join(dir, clean), nil
}

func buildResult(path string, a *archive.Archive, entries []*archive.Entry, extracted int) Result {
	infos := make([]EntryInfo, 0, len(entries))
	var total int64
	for _, e := range entries {
		infos = append(infos, EntryInfo{
			Name:      e.Name,
			Size:      e.Size,
			Offset:    e.Offset,
			Encrypted: e.Encrypted(),
			Type:      e.Type.String(),
		})
		total += e.Size
	}
	return Result{
		Archive: ArchiveInfo{
			Path:         path,
			EntryCount:   len(entries),
			TotalSize:    total,
			HasEncrypted: a.HasEncrypted,
		},
		Entries:   infos,
		Extracted: extracted,
		Summary:   report.Summarize(entries),
	}
}

func emit(cb func(ProgressEvent), event ProgressEvent) {
	if cb != nil {
		cb(event)
	}
}
