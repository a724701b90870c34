// Package ioharvest reads harvested JSONL files and dedup files.
package ioharvest

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/pkg/affiliation"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/segmentio/encoding/json"
)

// Sink consumes raw records. merge.Merger is a Sink.
type Sink interface {
	Add(rec dataset.RawRecord)
	AddMalformed()
}

// ReadRaw streams harvested records from paths into sink in file order.
// Lines that do not decode into a record are counted as malformed and
// skipped. An unreadable file stops reading.
func ReadRaw(
	ctx context.Context,
	paths []string,
	sink Sink,
	progress bool,
) error {
	for _, path := range paths {
		var count, bad int
		err := scanFile(ctx, path, progress, func(line []byte, num int) {
			var rec dataset.RawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				bad++
				sink.AddMalformed()
				slog.Warn("Skipping malformed line",
					"file", path, "line", num, "error", err)
				return
			}
			count++
			sink.Add(rec)
		})
		if err != nil {
			return err
		}
		slog.Info("Read harvested file",
			"file", path,
			"records", humanize.Comma(int64(count)),
			"malformed", bad,
		)
	}
	return nil
}

// ReadAggregated loads a dedup file. Lines that do not decode into a
// valid dataset are skipped and their number is returned.
func ReadAggregated(
	ctx context.Context,
	path string,
	progress bool,
) ([]*dataset.Aggregated, int, error) {
	var res []*dataset.Aggregated
	var bad int
	err := scanFile(ctx, path, progress, func(line []byte, num int) {
		var ds dataset.Aggregated
		if err := json.Unmarshal(line, &ds); err != nil {
			bad++
			slog.Warn("Skipping malformed line",
				"file", path, "line", num, "error", err)
			return
		}
		if !ds.Valid() {
			bad++
			slog.Warn("Skipping invalid dataset",
				"file", path, "line", num, "doi", ds.DOI)
			return
		}
		res = append(res, &ds)
	})
	if err != nil {
		return nil, bad, err
	}
	slog.Info("Read dedup file",
		"file", path,
		"datasets", humanize.Comma(int64(len(res))),
		"malformed", bad,
	)
	return res, bad, nil
}

// CheckResult tells how many datasets of a dedup file carry a ROR.
type CheckResult struct {
	Path     string
	Total    int
	Hits     int
	Examples []string
}

// CheckROR counts datasets of a dedup file that mention ror as queried
// institution or in an accepted affiliation claim. Up to examples DOIs of
// matching datasets are collected.
func CheckROR(
	ctx context.Context,
	path, ror string,
	examples int,
) (*CheckResult, error) {
	res := &CheckResult{Path: path}
	err := scanFile(ctx, path, false, func(line []byte, num int) {
		res.Total++
		var ds dataset.Aggregated
		if err := json.Unmarshal(line, &ds); err != nil {
			slog.Warn("Skipping malformed line",
				"file", path, "line", num, "error", err)
			return
		}
		if !affiliation.Carries(&ds, ror) {
			return
		}
		res.Hits++
		if len(res.Examples) < examples {
			res.Examples = append(res.Examples, ds.DOI)
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
