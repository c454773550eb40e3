// Package tabular reads and writes listing batches as CSV or JSONL files.
// The format is picked from the file extension; output keeps the input
// columns and appends the computed ones so downstream diffs stay stable
package tabular

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	perr "gpulens/internal/platform/errors"

	listdom "gpulens/internal/services/listings/domain"
)

// Reader implements listings/domain.BatchReaderPort over a CSV or JSONL file
type Reader struct {
	path string
}

// NewReader builds a reader for path; format is decided by extension
// (.csv, .jsonl, .ndjson)
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// ReadAll loads the whole batch in source order
func (r *Reader) ReadAll(ctx context.Context) ([]listdom.RawListing, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "tabular: open %s", r.path)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".csv":
		return readCSV(ctx, f)
	case ".jsonl", ".ndjson":
		return readJSONL(ctx, f)
	default:
		return nil, perr.InvalidArgf("tabular: unsupported extension %q", filepath.Ext(r.path))
	}
}

// csv columns in canonical order; extra input columns are ignored
var csvColumns = []string{"title", "bulk_notes", "price", "seller", "region", "url"}

func readCSV(ctx context.Context, f io.Reader) ([]listdom.RawListing, error) {
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // ragged rows handled per field below

	header, err := cr.Read()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeParse, "tabular: read csv header")
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["title"]; !ok {
		return nil, perr.Parsef("tabular: csv missing required column %q", "title")
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []listdom.RawListing
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		line++
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeParse, "tabular: csv line %d", line)
		}
		price := 0.0
		if raw := strings.TrimSpace(field(row, "price")); raw != "" {
			price, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeParse, "tabular: csv line %d: bad price %q", line, raw)
			}
		}
		out = append(out, listdom.RawListing{
			Title:     field(row, "title"),
			BulkNotes: field(row, "bulk_notes"),
			Price:     price,
			Seller:    field(row, "seller"),
			Region:    field(row, "region"),
			URL:       field(row, "url"),
		})
	}
}

func readJSONL(ctx context.Context, f io.Reader) ([]listdom.RawListing, error) {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var out []listdom.RawListing
	line := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var l listdom.RawListing
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeParse, "tabular: jsonl line %d", line)
		}
		out = append(out, l)
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "tabular: scan jsonl")
	}
	return out, nil
}
