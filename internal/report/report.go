package report

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/entisia/go-noa/internal/noa"
	"github.com/entisia/go-noa/internal/settings"
	"github.com/entisia/go-noa/internal/util"
)

// WriteListing renders the archive's entry table to w.
func WriteListing(w io.Writer, archivePath string, a *noa.Archive, cfg settings.Settings) error {
	entries, err := Filter(a.Entries, cfg.Pattern)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%-16s%s\n", "Archive:", filepath.Base(archivePath))
	fmt.Fprintf(w, "%-16s%s\n", "Entries:", util.FormatNumber(int64(len(entries))))
	fmt.Fprintf(w, "%-16s%s bytes\n", "Total Size:", util.FormatNumber(a.TotalSize()))
	if a.HasEncrypted {
		note := "yes"
		if cfg.Password == "" {
			note = "yes (no password set, payloads returned as stored)"
		}
		fmt.Fprintf(w, "%-16s%s\n", "Encrypted:", note)
	}
	fmt.Fprint(w, "\n")

	if !cfg.LongList {
		for _, e := range entries {
			fmt.Fprintln(w, e.Name)
		}
		return nil
	}

	fmt.Fprintf(w, "%-48s%-10s%-16s%-12s%s\n", "Name", "Type", "Size", "Offset", "Encryption")
	fmt.Fprintf(w, "%-48s%-10s%-16s%-12s%s\n", "----", "----", "----", "------", "----------")
	for _, e := range entries {
		enc := "-"
		if e.Encrypted() {
			enc = fmt.Sprintf("%#x", e.Encryption)
		}
		fmt.Fprintf(w, "%-48s%-10s%-16s%-12d%s\n",
			e.Name,
			e.Type.String(),
			util.FormatNumber(e.Size),
			e.Offset,
			enc,
		)
	}
	return nil
}

// Filter returns the entries whose path matches pattern. An empty pattern
// keeps everything. The pattern matches either the full slash-separated
// path or the base name, so "*.eri" finds images in subdirectories too.
func Filter(entries []*noa.Entry, pattern string) ([]*noa.Entry, error) {
	if pattern == "" {
		return entries, nil
	}
	var out []*noa.Entry
	for _, e := range entries {
		full, err := path.Match(pattern, e.Name)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		base, _ := path.Match(pattern, path.Base(e.Name))
		if full || base {
			out = append(out, e)
		}
	}
	return out, nil
}

// Summarize counts entries per classified type, for the post-extraction
// one-line summary.
func Summarize(entries []*noa.Entry) string {
	counts := map[noa.EntryType]int{}
	for _, e := range entries {
		counts[e.Type]++
	}
	order := []noa.EntryType{
		noa.TypeImage,
		noa.TypeSound,
		noa.TypeScript,
		noa.TypeArchive,
		noa.TypeUnknown,
	}
	var parts []string
	for _, t := range order {
		if counts[t] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[t], t.String()))
		}
	}
	if len(parts) == 0 {
		return "no entries"
	}
	return strings.Join(parts, ", ")
}
