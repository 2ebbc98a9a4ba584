package report

import (
	"strings"
	"testing"

	"github.com/entisia/go-noa/internal/noa"
	"github.com/entisia/go-noa/internal/settings"
)

func testEntries() []*noa.Entry {
	return []*noa.Entry{
		{Name: "bg/forest.eri", Size: 2048, Type: noa.TypeImage},
		{Name: "bgm/title.mio", Size: 4096, Type: noa.TypeSound, Encryption: 0x40000000},
		{Name: "main.cotopha", Size: 512, Type: noa.TypeScript},
	}
}

func testArchive(entries []*noa.Entry) *noa.Archive {
	a := &noa.Archive{Entries: entries}
	for _, e := range entries {
		if e.Encrypted() {
			a.HasEncrypted = true
		}
	}
	return a
}

func TestWriteListing_Short(t *testing.T) {
	var b strings.Builder
	cfg := settings.Default()
	if err := WriteListing(&b, "/games/demo/script.noa", testArchive(testEntries()), cfg); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	for _, want := range []string{
		"Archive:        script.noa",
		"Entries:        3",
		"Total Size:     6,656 bytes",
		"Encrypted:      yes (no password set, payloads returned as stored)",
		"bg/forest.eri\n",
		"bgm/title.mio\n",
		"main.cotopha\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Offset") {
		t.Error("short listing should not include the long-format header")
	}
}

func TestWriteListing_Long(t *testing.T) {
	var b strings.Builder
	cfg := settings.Default()
	cfg.LongList = true
	cfg.Password = "secret"
	if err := WriteListing(&b, "script.noa", testArchive(testEntries()), cfg); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	for _, want := range []string{
		"Encrypted:      yes\n",
		"Name",
		"0x40000000",
		"sound",
		"script",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q\n%s", want, out)
		}
	}
}

func TestWriteListing_PatternFilter(t *testing.T) {
	var b strings.Builder
	cfg := settings.Default()
	cfg.Pattern = "*.eri"
	if err := WriteListing(&b, "script.noa", testArchive(testEntries()), cfg); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "bg/forest.eri") {
		t.Errorf("pattern should match by base name\n%s", out)
	}
	if strings.Contains(out, "title.mio") {
		t.Errorf("pattern should exclude non-matching entries\n%s", out)
	}
	if !strings.Contains(out, "Entries:        1") {
		t.Errorf("entry count should reflect the filter\n%s", out)
	}
}

func TestFilter_BadPattern(t *testing.T) {
	if _, err := Filter(testEntries(), "[oops"); err == nil {
		t.Fatal("malformed pattern should be rejected")
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(testEntries())
	want := "1 image, 1 sound, 1 script"
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
	if got := Summarize(nil); got != "no entries" {
		t.Errorf("Summarize(nil) = %q", got)
	}
}
