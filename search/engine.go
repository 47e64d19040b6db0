package search

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"find-papers/zotero"
)

// ProgressFunc is an optional callback to report progress like: processed, total, path
type ProgressFunc func(stage string, processed, total int, path string)

// Stats summarizes one corpus search.
type Stats struct {
	FilesProcessed int
	FilesMatched   int
	TotalMatches   int
	ElapsedTime    time.Duration
}

// Config assembles an Engine. Zero values mean: default extractor, default
// logger, one worker per CPU, no metadata linking, no progress reporting,
// no per file timeout.
type Config struct {
	Queries      []Query
	ContextWords int
	ZoteroDir    string
	Workers      int
	FileTimeout  time.Duration
	Extractor    PageExtractor
	Logger       *slog.Logger
	OnProgress   ProgressFunc
}

// Engine runs multi-query searches over PDF corpora.
type Engine struct {
	queries      []compiledQuery
	contextWords int
	zoteroDir    string
	workers      int
	fileTimeout  time.Duration
	extractor    PageExtractor
	logger       *slog.Logger
	onProgress   ProgressFunc
}

// NewEngine compiles the configured queries and returns a ready engine.
// A malformed regex query fails here, before any file is opened, wrapping
// ErrInvalidPattern.
func NewEngine(cfg Config) (*Engine, error) {
	compiled, err := compileQueries(cfg.Queries)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = LedongthucExtractor{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	contextWords := cfg.ContextWords
	if contextWords < 0 {
		contextWords = 0
	}
	fileTimeout := cfg.FileTimeout
	if fileTimeout < 0 {
		fileTimeout = 0
	}
	return &Engine{
		queries:      compiled,
		contextWords: contextWords,
		zoteroDir:    cfg.ZoteroDir,
		workers:      workers,
		fileTimeout:  fileTimeout,
		extractor:    extractor,
		logger:       logger,
		onProgress:   cfg.OnProgress,
	}, nil
}

// Execute searches every PDF under root. Results arrive in whatever order
// the workers finish; order within one file follows the query list and
// page order. Files that fail to extract are dropped and the search goes
// on, so a partial corpus still returns its matches.
func (e *Engine) Execute(ctx context.Context, root string) ([]Match, Stats, error) {
	start := time.Now()
	var stats Stats
	if len(e.queries) == 0 {
		stats.ElapsedTime = time.Since(start)
		return nil, stats, nil
	}

	// Step 1: enumerate the corpus and build the metadata index, side by
	// side. A broken library never stops the search.
	var (
		files []string
		index zotero.Index
		g     errgroup.Group
	)
	g.Go(func() error {
		var err error
		files, err = FindPDFs(root)
		return err
	})
	if e.zoteroDir != "" {
		g.Go(func() error {
			ix, err := zotero.BuildIndex(e.zoteroDir)
			if err != nil {
				e.logger.Warn("continuing without zotero metadata", "dir", e.zoteroDir, "error", err)
				return nil
			}
			index = ix
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		stats.ElapsedTime = time.Since(start)
		return nil, stats, err
	}

	total := len(files)
	if total == 0 {
		stats.ElapsedTime = time.Since(start)
		return nil, stats, nil
	}
	e.progress("scanning", 0, total, "")

	// Step 2: fan out over the files on a bounded pool.
	pool, err := ants.NewPool(e.workers)
	if err != nil {
		stats.ElapsedTime = time.Since(start)
		return nil, stats, err
	}
	defer pool.Release()

	var (
		mu        sync.Mutex
		all       []Match
		matched   int
		processed atomic.Int64
		wg        sync.WaitGroup
	)
	for _, path := range files {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			n := int(processed.Add(1))
			select {
			case <-ctx.Done():
				return
			default:
			}
			matches := e.searchFile(path, index)
			e.progress("searching", n, total, path)
			if len(matches) == 0 {
				return
			}
			mu.Lock()
			all = append(all, matches...)
			matched++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			e.logger.Debug("worker submit failed", "path", path, "error", submitErr)
		}
	}
	wg.Wait()

	stats.FilesProcessed = int(processed.Load())
	stats.FilesMatched = matched
	stats.TotalMatches = len(all)
	stats.ElapsedTime = time.Since(start)
	return all, stats, nil
}

// ExecuteFile runs the same query composition against a single document.
// Unlike the corpus search, extraction failures surface directly.
func (e *Engine) ExecuteFile(path string) ([]Match, error) {
	pages, err := e.extract(path)
	if err != nil {
		return nil, err
	}
	var meta *zotero.Metadata
	if e.zoteroDir != "" {
		ix, err := zotero.BuildIndex(e.zoteroDir)
		if err != nil {
			e.logger.Warn("continuing without zotero metadata", "dir", e.zoteroDir, "error", err)
		} else if m, ok := ix.Lookup(filepath.Base(path)); ok {
			meta = &m
		}
	}
	return evaluateDocument(path, pages, e.queries, e.contextWords, meta), nil
}

// searchFile extracts and evaluates one corpus file. Failures are logged
// and swallowed; the file simply contributes nothing.
func (e *Engine) searchFile(path string, index zotero.Index) []Match {
	pages, err := e.extract(path)
	if err != nil {
		e.logger.Debug("skipping file", "path", path, "error", err)
		return nil
	}
	var meta *zotero.Metadata
	if index != nil {
		if m, ok := index.Lookup(filepath.Base(path)); ok {
			meta = &m
		}
	}
	return evaluateDocument(path, pages, e.queries, e.contextWords, meta)
}

// extract runs the extractor, bounded by the per file timeout when one is
// configured. Extraction has no cancellation hook, so a timed out worker
// goroutine is abandoned and its eventual result discarded.
func (e *Engine) extract(path string) ([]Page, error) {
	if e.fileTimeout <= 0 {
		return e.extractor.Extract(path)
	}

	type outcome struct {
		pages []Page
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		pages, err := e.extractor.Extract(path)
		done <- outcome{pages: pages, err: err}
	}()

	timer := time.NewTimer(e.fileTimeout)
	defer timer.Stop()
	select {
	case out := <-done:
		return out.pages, out.err
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s: extraction exceeded %s", ErrExtractionFailed, path, e.fileTimeout)
	}
}

func (e *Engine) progress(stage string, processed, total int, path string) {
	if e.onProgress != nil {
		e.onProgress(stage, processed, total, path)
	}
}

// GetAbsolutePath resolves a possibly relative path for display.
func GetAbsolutePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return filePath
	}
	return abs
}

// FormatNumber formats a number with thousands separators.
func FormatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}
	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}
