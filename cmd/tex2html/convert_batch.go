package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/document"
	"github.com/alnah/go-tex2html/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ErrSessionInit is recorded for files whose worker got no session.
var ErrSessionInit = errors.New("failed to initialize typesetting session")

// Typesetter typesets a rendered fragment server side.
type Typesetter interface {
	Typeset(ctx context.Context, fragment string, targets []string) (*tex2html.TypesetResult, error)
}

// Pool abstracts session pool operations for testability.
type Pool interface {
	Acquire() (Typesetter, error)
	Release(Typesetter)
	Size() int
}

// poolAdapter exposes a tex2html.SessionPool as a Pool.
type poolAdapter struct {
	pool *tex2html.SessionPool
}

func (a *poolAdapter) Acquire() (Typesetter, error) {
	s, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Release panics when ts did not come from Acquire (programmer error).
func (a *poolAdapter) Release(ts Typesetter) {
	s, ok := ts.(*tex2html.Session)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", ts))
	}
	a.pool.Release(s)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently. With a pool, each worker
// holds one session for its whole share of the batch and concurrency is
// capped by the pool size.
func convertBatch(ctx context.Context, pool Pool, workers int, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := workers
	if pool != nil {
		concurrency = pool.Size()
	}
	concurrency = max(1, min(concurrency, len(files)))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var ts Typesetter
			if pool != nil {
				var err error
				ts, err = pool.Acquire()
				if err != nil {
					// Session creation failed, mark remaining jobs as failed
					for idx := range jobs {
						results[idx] = ConversionResult{
							InputPath: files[idx].InputPath,
							Err:       fmt.Errorf("%w: %v", ErrSessionInit, err),
						}
					}
					return
				}
				defer pool.Release(ts)
			}

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, ts, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, ts Typesetter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadTeX, err)
		result.Duration = time.Since(start)
		return result
	}

	out, err := renderDocument(ctx, ts, f.InputPath, string(content), params)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := writeOutput(f.OutputPath, out); err != nil {
		result.Err = err
	}
	result.Duration = time.Since(start)
	return result
}

// renderDocument renders src, typesets it when ts is set, and wraps it in
// a standalone page when params has a builder.
func renderDocument(ctx context.Context, ts Typesetter, name, src string, params *conversionParams) (string, error) {
	body := params.renderer.Render(src, tex2html.RenderOptions{})

	var mathCSS string
	if ts != nil {
		res, err := ts.Typeset(ctx, body, params.targets)
		if err != nil {
			return "", err
		}
		body, mathCSS = res.HTML, res.CSS
		params.log.Debugf("typeset %s (%d bytes of engine CSS)", name, len(mathCSS))
	}

	if params.builder == nil {
		css := joinCSS(params.extraCSS, mathCSS)
		return (&document.CSSInjection{}).InjectCSS(ctx, body, css), nil
	}

	return params.builder.Build(ctx, document.Page{
		Title:     pageTitle(params.title, name),
		Lang:      params.lang,
		Body:      body,
		ScriptURL: params.scriptURL,
	}, joinCSS(params.css, params.extraCSS, mathCSS))
}

// pageTitle returns title, or the input file name without its extension.
func pageTitle(title, inputPath string) string {
	if title != "" || inputPath == stdinName {
		return title
	}
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeOutput writes html to path, creating parent directories.
func writeOutput(path, html string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", ErrWriteHTML, err)
	}
	// #nosec G306 -- HTML files are meant to be readable
	if err := fileutil.WriteFileAtomic(path, []byte(html), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHTML, err)
	}
	return nil
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
