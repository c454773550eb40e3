package tabular

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gpulens/internal/core/matcher"

	listdom "gpulens/internal/services/listings/domain"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	body := "title,price,seller,bulk_notes\n" +
		"NVIDIA RTX 3090,899.99,gpu_liquidator,\"24GB, good condition\"\n" +
		"Random bracket,,,\n"
	r := NewReader(writeTemp(t, "batch.csv", body))

	xs, err := r.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(xs) != 2 {
		t.Fatalf("want 2 rows, got %d", len(xs))
	}
	if xs[0].Title != "NVIDIA RTX 3090" || xs[0].Price != 899.99 || xs[0].Seller != "gpu_liquidator" {
		t.Fatalf("row 0 mismapped: %+v", xs[0])
	}
	if xs[0].BulkNotes != "24GB, good condition" {
		t.Fatalf("quoted notes mangled: %q", xs[0].BulkNotes)
	}
	// empty price cell is a zero price, not an error
	if xs[1].Price != 0 {
		t.Fatalf("empty price must read as 0: %+v", xs[1])
	}
}

func TestReadCSVMissingTitle(t *testing.T) {
	r := NewReader(writeTemp(t, "bad.csv", "price,seller\n1,2\n"))
	if _, err := r.ReadAll(context.Background()); err == nil {
		t.Fatal("csv without a title column must fail")
	}
}

func TestReadCSVBadPrice(t *testing.T) {
	r := NewReader(writeTemp(t, "bad.csv", "title,price\nX,notanumber\n"))
	if _, err := r.ReadAll(context.Background()); err == nil {
		t.Fatal("unparseable price must fail")
	}
}

func TestReadJSONL(t *testing.T) {
	body := `{"title":"RTX 4090 bundle","bulk_notes":"x2","price":1500}` + "\n" +
		"\n" + // blank lines are skipped
		`{"title":"Tesla T4","price":400,"region":"EU"}` + "\n"
	r := NewReader(writeTemp(t, "batch.jsonl", body))

	xs, err := r.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(xs) != 2 {
		t.Fatalf("want 2 rows, got %d", len(xs))
	}
	if xs[1].Region != "EU" || xs[1].Price != 400 {
		t.Fatalf("row 1 mismapped: %+v", xs[1])
	}
}

func TestReadUnsupportedExtension(t *testing.T) {
	r := NewReader(writeTemp(t, "batch.parquet", "nope"))
	if _, err := r.ReadAll(context.Background()); err == nil {
		t.Fatal("unknown extension must fail")
	}
}

func TestWriteScoredColumnStable(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(dir)

	vram := 24
	gen := "Ampere"
	xs := []listdom.ScoredListing{{
		EnrichedListing: listdom.EnrichedListing{
			Raw: listdom.RawListing{Title: "RTX 3090", Price: 899.99, Seller: "s"},
			Match: matcher.Decision{
				CanonicalModel: "RTX_3090",
				MatchType:      matcher.MatchExact,
				MatchScore:     1.0,
				IsValidGPU:     true,
			},
			Spec:     listdom.SpecFields{VRAMGB: &vram, Generation: &gen},
			Warnings: []string{"registry miss"},
		},
		FinalScore: 100,
	}}
	if err := w.WriteScored(context.Background(), "run-1", xs); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "run-1", "scored.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want header + 1 row, got %d", len(rows))
	}
	// input columns lead, computed columns follow
	if rows[0][0] != "title" || rows[0][6] != "canonical_model" {
		t.Fatalf("header order changed: %v", rows[0])
	}
	if len(rows[0]) != len(rows[1]) {
		t.Fatalf("ragged output: %d vs %d", len(rows[0]), len(rows[1]))
	}
	if rows[1][6] != "RTX_3090" || rows[1][7] != "exact" {
		t.Fatalf("computed cells wrong: %v", rows[1])
	}
	// nil spec fields serialize as empty cells, set ones carry the value
	tdpCol, genCol := -1, -1
	for i, h := range rows[0] {
		switch h {
		case "tdp_watts":
			tdpCol = i
		case "generation":
			genCol = i
		}
	}
	if rows[1][tdpCol] != "" {
		t.Fatalf("nil tdp must be empty, got %q", rows[1][tdpCol])
	}
	if rows[1][genCol] != "Ampere" {
		t.Fatalf("generation cell wrong: %q", rows[1][genCol])
	}

	// the jsonl twin carries the full record
	b, err := os.ReadFile(filepath.Join(dir, "run-1", "scored.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], `"canonical_model":"RTX_3090"`) {
		t.Fatalf("unexpected jsonl body: %s", b)
	}
}

func TestWriteStage(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(dir)
	if err := w.WriteStage(context.Background(), "run-9", "matched", map[string]int{"n": 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "run-9", "matched.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"n": 3`) {
		t.Fatalf("unexpected artifact body: %s", b)
	}
}
