package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"github.com/jamesainslie/dedup/pkg/dedup/logging"
	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

func logger() *logging.Logger { return logging.Get("scanner") }

// Scanner walks directory trees using fastwalk.
type Scanner struct {
	opts Options

	// Compiled glob forms of the ignore rules; nil entries fall back to
	// substring/prefix matching only.
	globs []glob.Glob

	// Atomic counters for thread-safe progress reporting.
	dirsScanned  atomic.Int64
	filesScanned atomic.Int64
	bytesScanned atomic.Int64
	emptySkipped atomic.Int64
	ignoreHits   atomic.Int64

	// currentPath is the path currently being scanned (for progress).
	currentPath atomic.Value

	// errors collects scan errors without stopping the scan.
	errors   []types.ScanError
	errorsMu sync.Mutex

	// results collects files passing the criteria.
	results   []types.FileRecord
	resultsMu sync.Mutex

	// lastProgress tracks when progress was last reported, to throttle callbacks.
	lastProgress atomic.Int64
}

// New creates a new Scanner with the given options.
// Options are validated and defaults are applied.
func New(opts Options) *Scanner {
	_ = opts.Validate()

	s := &Scanner{
		opts:    opts,
		errors:  make([]types.ScanError, 0),
		results: make([]types.FileRecord, 0),
	}
	for _, rule := range opts.Ignore {
		g, err := glob.Compile(rule)
		if err != nil {
			g = nil
		}
		s.globs = append(s.globs, g)
	}
	s.currentPath.Store("")
	return s
}

// Scan walks every root and returns the collected file records.
// It blocks until complete or the context is cancelled; cancellation is
// honored at file boundaries, never mid-walk of a single entry.
//
// Traversal order is unspecified, but every reachable regular file under
// every root is visited exactly once. Symbolic links are treated as leaves
// and never followed, so link cycles cannot loop the walk.
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	startTime := time.Now()

	roots, err := s.resolveRoots()
	if err != nil {
		return nil, err
	}

	conf := fastwalk.Config{
		Follow: false, // Links are leaves; never walk into their targets.
	}

	done := make(chan struct{})
	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	for _, root := range roots {
		s.currentPath.Store(root)
		s.reportProgressForce()

		err := fastwalk.Walk(&conf, root, s.walkCallback(done))
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, fastwalk.ErrSkipFiles) {
			return nil, err
		}
	}

	s.reportProgressForce()
	logger().Info("scan complete",
		"files", s.filesScanned.Load(),
		"dirs", s.dirsScanned.Load(),
		"collected", len(s.results),
		"errors", len(s.errors))

	return &types.ScanResult{
		Files:          s.results,
		DirsScanned:    s.dirsScanned.Load(),
		FilesScanned:   s.filesScanned.Load(),
		EmptySkipped:   s.emptySkipped.Load(),
		IgnoredSkipped: s.ignoreHits.Load(),
		TotalSize:      s.bytesScanned.Load(),
		Elapsed:        time.Since(startTime),
		Errors:         s.errors,
	}, nil
}

// resolveRoots converts every root to an absolute path and verifies it is a
// directory. A missing root is an error: the caller asked for it explicitly.
func (s *Scanner) resolveRoots() ([]string, error) {
	roots := make([]string, 0, len(s.opts.Roots))
	for _, r := range s.opts.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, &fs.PathError{Op: "scan", Path: abs, Err: errors.New("not a directory")}
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

// walkCallback returns the callback function for fastwalk.Walk.
func (s *Scanner) walkCallback(done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		// Stat and permission errors are counted, not fatal.
		if err != nil {
			s.addError(path, err)
			return nil
		}

		if d.IsDir() {
			s.dirsScanned.Add(1)
			s.currentPath.Store(path)
			s.reportProgress()
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		s.processFile(path, d)
		return nil
	}
}

// processFile handles a regular file entry.
func (s *Scanner) processFile(path string, d fs.DirEntry) {
	if s.isIgnored(filepath.Base(path)) {
		s.ignoreHits.Add(1)
		return
	}

	info, err := d.Info()
	if err != nil {
		s.addError(path, err)
		return
	}

	size := info.Size()
	s.filesScanned.Add(1)
	s.bytesScanned.Add(size)
	s.reportProgress()

	// Zero-byte files carry no content identity worth grouping.
	if size == 0 {
		s.emptySkipped.Add(1)
		return
	}
	if size < s.opts.MinSize {
		return
	}

	rec := types.FileRecord{
		Path:       path,
		Size:       size,
		ModTime:    info.ModTime(),
		AccessTime: accessTime(info),
	}

	s.resultsMu.Lock()
	s.results = append(s.results, rec)
	s.resultsMu.Unlock()
}

// isIgnored checks the file name against every ignore rule.
// A rule matches on substring, prefix, or glob.
func (s *Scanner) isIgnored(name string) bool {
	for i, rule := range s.opts.Ignore {
		if rule == "" {
			continue
		}
		if strings.Contains(name, rule) || strings.HasPrefix(name, rule) {
			return true
		}
		if g := s.globs[i]; g != nil && g.Match(name) {
			return true
		}
	}
	return false
}

// addError adds an error to the error list thread-safely.
func (s *Scanner) addError(path string, err error) {
	logger().Debug("scan error", "path", path, "error", err)
	s.errorsMu.Lock()
	s.errors = append(s.errors, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.errorsMu.Unlock()
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	// Throttle progress updates to every 10ms.
	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return // Another goroutine updated it.
	}

	s.sendProgress()
}

// reportProgressForce calls the progress callback immediately, bypassing throttle.
// Use for important state changes like scan start/end.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

// sendProgress sends the current progress to the callback.
func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(types.ScanProgress{
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		BytesScanned: s.bytesScanned.Load(),
		CurrentPath:  currentPath,
	})
}
