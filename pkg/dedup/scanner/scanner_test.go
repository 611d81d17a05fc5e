package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

// createTestTree builds a small directory structure for scanning tests.
//
//	root/
//	  keep.txt       (5 bytes)
//	  empty.txt      (0 bytes)
//	  .DS_Store      (4 bytes, ignored by default)
//	  sub/
//	    nested.bin   (9 bytes)
//	    skip.tmp     (3 bytes)
func createTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files := map[string]string{
		"keep.txt":       "hello",
		"empty.txt":      "",
		".DS_Store":      "junk",
		"sub/nested.bin": "ninebytes",
		"sub/skip.tmp":   "tmp",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return root
}

// names extracts sorted base names from scan results.
func names(files []types.FileRecord) map[string]bool {
	out := make(map[string]bool, len(files))
	for _, f := range files {
		out[filepath.Base(f.Path)] = true
	}
	return out
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(opts.Roots) != 1 || opts.Roots[0] != "." {
		t.Errorf("Roots = %v, want [.]", opts.Roots)
	}
	if len(opts.Ignore) == 0 {
		t.Error("Ignore rules empty, want defaults")
	}
}

func TestScanCollectsRegularFiles(t *testing.T) {
	root := createTestTree(t)

	s := New(Options{Roots: []string{root}})
	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got := names(result.Files)
	for _, want := range []string{"keep.txt", "nested.bin", "skip.tmp"} {
		if !got[want] {
			t.Errorf("missing %s in results", want)
		}
	}
	if got["empty.txt"] {
		t.Error("zero-byte file was collected")
	}
	if got[".DS_Store"] {
		t.Error("ignored file was collected")
	}
	if result.EmptySkipped != 1 {
		t.Errorf("EmptySkipped = %d, want 1", result.EmptySkipped)
	}
	if result.IgnoredSkipped != 1 {
		t.Errorf("IgnoredSkipped = %d, want 1", result.IgnoredSkipped)
	}
	if result.DirsScanned < 2 {
		t.Errorf("DirsScanned = %d, want >= 2", result.DirsScanned)
	}
}

func TestScanIgnoreRules(t *testing.T) {
	root := createTestTree(t)

	tests := []struct {
		name    string
		ignore  []string
		absent  string
		present string
	}{
		{name: "substring", ignore: []string{"ested"}, absent: "nested.bin", present: "keep.txt"},
		{name: "prefix", ignore: []string{"keep"}, absent: "keep.txt", present: "nested.bin"},
		{name: "glob", ignore: []string{"*.tmp"}, absent: "skip.tmp", present: "keep.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{Roots: []string{root}, Ignore: tt.ignore})
			result, err := s.Scan(context.Background())
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			got := names(result.Files)
			if got[tt.absent] {
				t.Errorf("%s should have been ignored", tt.absent)
			}
			if !got[tt.present] {
				t.Errorf("%s should have been collected", tt.present)
			}
		})
	}
}

func TestScanMinSize(t *testing.T) {
	root := createTestTree(t)

	s := New(Options{Roots: []string{root}, MinSize: 6})
	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got := names(result.Files)
	if got["keep.txt"] { // 5 bytes
		t.Error("keep.txt below min size was collected")
	}
	if !got["nested.bin"] { // 9 bytes
		t.Error("nested.bin above min size was not collected")
	}
}

func TestScanMultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	for root, name := range map[string]string{rootA: "a.txt", rootB: "b.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("data"), 0o644); err != nil {
			t.Fatalf("writing: %v", err)
		}
	}

	s := New(Options{Roots: []string{rootA, rootB}})
	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got := names(result.Files)
	if !got["a.txt"] || !got["b.txt"] {
		t.Errorf("expected files from both roots, got %v", got)
	}
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not supported on windows")
	}

	root := t.TempDir()
	target := filepath.Join(root, "dir")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(target, "real.txt"), []byte("real"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A link back to an ancestor would cycle forever if followed.
	if err := os.Symlink(root, filepath.Join(target, "loop")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	s := New(Options{Roots: []string{root}})
	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	count := 0
	for _, f := range result.Files {
		if filepath.Base(f.Path) == "real.txt" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("real.txt visited %d times, want exactly 1", count)
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := New(Options{Roots: []string{filepath.Join(t.TempDir(), "absent")}})
	if _, err := s.Scan(context.Background()); err == nil {
		t.Fatal("Scan() error = nil, want error for missing root")
	}
}

func TestScanFileAsRoot(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := New(Options{Roots: []string{path}})
	if _, err := s.Scan(context.Background()); err == nil {
		t.Fatal("Scan() error = nil, want error for non-directory root")
	}
}

func TestScanProgressCallback(t *testing.T) {
	root := createTestTree(t)

	var calls atomic.Int64
	s := New(Options{
		Roots: []string{root},
		OnProgress: func(p types.ScanProgress) {
			calls.Add(1)
		},
	})
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if calls.Load() == 0 {
		t.Error("progress callback never invoked")
	}
}
