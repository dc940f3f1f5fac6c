package main

import (
	"context"

	"golang.org/x/sync/singleflight"
)

type scanFunc func(ctx context.Context, path string, progress *scanProgress) (scanResult, error)

type measureFunc func(ctx context.Context, path string, progress *scanProgress) (int64, error)

// scanDeduper collapses concurrent requests for the same path into a single
// traversal. Callers that attach to an in-flight scan get its result and
// error; progress is reported on the counters of whoever started it.
type scanDeduper struct {
	scans    singleflight.Group
	measures singleflight.Group
	scan     scanFunc
	measure  measureFunc
}

func newScanDeduper(scan scanFunc, measure measureFunc) *scanDeduper {
	return &scanDeduper{scan: scan, measure: measure}
}

func (d *scanDeduper) Scan(ctx context.Context, path string, progress *scanProgress) (scanResult, bool, error) {
	v, err, shared := d.scans.Do(path, func() (any, error) {
		return d.scan(ctx, path, progress)
	})
	if err != nil {
		return scanResult{}, shared, err
	}
	return v.(scanResult), shared, nil
}

func (d *scanDeduper) Measure(ctx context.Context, path string, progress *scanProgress) (int64, error) {
	v, err, _ := d.measures.Do(path, func() (any, error) {
		return d.measure(ctx, path, progress)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Forget detaches path from any in-flight scan so the next Scan starts a new
// traversal instead of sharing one that began before a change.
func (d *scanDeduper) Forget(path string) {
	d.scans.Forget(path)
}
