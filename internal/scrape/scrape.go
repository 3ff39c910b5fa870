// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape fetches OPA account records for a list of ids, saves each
// raw response, and feeds successful responses to a record sink.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/opa-api/internal/fsutil"
	"github.com/pdiddy/opa-api/internal/httputil"
	"github.com/pdiddy/opa-api/internal/opa"
	"github.com/pdiddy/opa-api/pkg/types"
)

// SummaryFile is written to the save directory at the end of every run.
const SummaryFile = "summary.yaml"

// Sink receives decoded records. Run calls it from a single goroutine.
type Sink interface {
	Write(rec *opa.Record) error
}

type teeSink []Sink

func (t teeSink) Write(rec *opa.Record) error {
	for _, s := range t {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Tee returns a Sink that writes each record to every sink in order,
// stopping at the first error.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

// Result holds the outcome of a scrape run.
type Result struct {
	RunID      string
	Started    time.Time
	Finished   time.Time
	Fetched    int
	Skipped    int
	NotSuccess int
	Failed     int
	FailedIDs  []int

	errs *multierror.Error
}

// Total returns the number of ids processed.
func (r *Result) Total() int {
	return r.Fetched + r.Skipped + r.NotSuccess + r.Failed
}

// Elapsed returns the wall time of the run.
func (r *Result) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}

// HasFailures reports whether any id failed to fetch or decode.
func (r *Result) HasFailures() bool {
	return r.Failed > 0
}

// Err returns the per-id failures combined, or nil.
func (r *Result) Err() error {
	return r.errs.ErrorOrNil()
}

// Summary converts the result into its on-disk form.
func (r *Result) Summary(serviceURL string) types.RunSummary {
	failed := append([]int(nil), r.FailedIDs...)
	sort.Ints(failed)
	return types.RunSummary{
		RunID:      r.RunID,
		ServiceURL: serviceURL,
		Started:    r.Started,
		Finished:   r.Finished,
		Total:      r.Total(),
		Fetched:    r.Fetched,
		Skipped:    r.Skipped,
		NotSuccess: r.NotSuccess,
		Failed:     r.Failed,
		FailedIDs:  failed,
	}
}

type fetched struct {
	id      int
	body    []byte
	skipped bool
	err     error
}

// Run fetches every id with cfg.Concurrency workers. Each response body is
// saved to cfg.SaveDir/<id>.json; ids with a saved response are not
// requested again unless cfg.Refetch is set, but their saved body is still
// passed to sink. Individual fetch failures are reported on w and do not
// stop the run. A sink error or context cancellation stops dispatching new
// ids and is returned alongside the partial result.
func Run(ctx context.Context, client *http.Client, ids []int, cfg types.ScrapeConfig, sink Sink, w io.Writer) (*Result, error) {
	if err := os.MkdirAll(cfg.SaveDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory %s: %w", cfg.SaveDir, err)
	}

	workers := cfg.Concurrency
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &Result{RunID: uuid.NewString(), Started: time.Now()}
	f := &fetcher{client: client, cfg: cfg}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	results := make(chan fetched, workers)

	g.Go(func() error {
		defer close(jobs)
		for _, id := range ids {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- id:
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for id := range jobs {
				results <- f.fetch(gctx, id)
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var sinkErr error
	for r := range results {
		if sinkErr != nil {
			continue
		}
		if err := result.record(r, sink, w); err != nil {
			sinkErr = err
			cancel()
		}
	}

	runErr := g.Wait()
	result.Finished = time.Now()

	fmt.Fprintf(w, "\nScrape summary: %d fetched, %d skipped, %d not found, %d failed (total: %d)\n",
		result.Fetched, result.Skipped, result.NotSuccess, result.Failed, result.Total())

	if sinkErr != nil {
		return result, sinkErr
	}
	if runErr != nil {
		return result, fmt.Errorf("scrape interrupted: %w", runErr)
	}
	return result, nil
}

// record accounts for one fetched id. Only sink errors are returned.
func (r *Result) record(f fetched, sink Sink, w io.Writer) error {
	if f.err != nil {
		r.fail(f.id, f.err, w)
		return nil
	}

	rec, err := opa.Decode(f.body)
	switch {
	case errors.Is(err, opa.ErrNotSuccess):
		fmt.Fprintf(w, "not found: %d %s\n", f.id, strings.TrimSpace(string(f.body)))
		r.NotSuccess++
		return nil
	case err != nil:
		r.fail(f.id, err, w)
		return nil
	}

	if err := sink.Write(rec); err != nil {
		return fmt.Errorf("writing record %d: %w", f.id, err)
	}
	if f.skipped {
		r.Skipped++
	} else {
		r.Fetched++
	}
	return nil
}

func (r *Result) fail(id int, err error, w io.Writer) {
	fmt.Fprintf(w, "failed:  %d (%v)\n", id, err)
	r.Failed++
	r.FailedIDs = append(r.FailedIDs, id)
	r.errs = multierror.Append(r.errs, fmt.Errorf("id %d: %w", id, err))
}

type fetcher struct {
	client *http.Client
	cfg    types.ScrapeConfig
}

func (f *fetcher) fetch(ctx context.Context, id int) fetched {
	path := SavePath(f.cfg.SaveDir, id)
	if !f.cfg.Refetch {
		if body, err := os.ReadFile(path); err == nil {
			return fetched{id: id, body: body, skipped: true}
		}
	}

	body, err := f.get(ctx, id)
	if err != nil {
		return fetched{id: id, err: err}
	}
	if err := fsutil.WriteFile(path, body, 0o644); err != nil {
		return fetched{id: id, err: fmt.Errorf("saving response: %w", err)}
	}
	return fetched{id: id, body: body}
}

func (f *fetcher) get(ctx context.Context, id int) ([]byte, error) {
	url := AccountURL(f.cfg.ServiceURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// AccountURL returns the service URL for one account id.
func AccountURL(serviceURL string, id int) string {
	return fmt.Sprintf("%s/%d?format=json", strings.TrimRight(serviceURL, "/"), id)
}

// SavePath returns where the raw response for id is stored.
func SavePath(dir string, id int) string {
	return filepath.Join(dir, strconv.Itoa(id)+".json")
}
