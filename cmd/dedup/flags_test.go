package main

import (
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/manifest"
)

func TestResolveAlgorithms(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []digest.Algorithm
		wantErr bool
	}{
		{
			name:  "explicit list",
			input: []string{"md5", "sha1"},
			want:  []digest.Algorithm{digest.MD5, digest.SHA1},
		},
		{
			name:  "defaults when empty",
			input: nil,
			want:  []digest.Algorithm{digest.SHA256},
		},
		{
			name:    "unknown algorithm",
			input:   []string{"sha3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveAlgorithms(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveAlgorithms() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("algorithm %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolveRoots(t *testing.T) {
	dir := t.TempDir()

	roots, err := resolveRoots([]string{dir, dir, filepath.Join(dir, "..", filepath.Base(dir))})
	if err != nil {
		t.Fatalf("resolveRoots() error = %v", err)
	}
	if len(roots) != 1 {
		t.Errorf("duplicate roots not collapsed: %v", roots)
	}
}

func TestResolveRoots_DefaultsToCwd(t *testing.T) {
	roots, err := resolveRoots(nil)
	if err != nil {
		t.Fatalf("resolveRoots() error = %v", err)
	}
	if len(roots) != 1 || !filepath.IsAbs(roots[0]) {
		t.Errorf("roots = %v, want one absolute path", roots)
	}
}

func TestManifestFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		path    string
		want    manifest.Format
		wantErr bool
	}{
		{name: "explicit json", format: "json", path: "x.yaml", want: manifest.FormatJSON},
		{name: "explicit checksum", format: "checksum", path: "x.json", want: manifest.FormatChecksum},
		{name: "json extension", path: "sums.json", want: manifest.FormatJSON},
		{name: "yaml extension", path: "sums.yml", want: manifest.FormatYAML},
		{name: "sums extension", path: "SHA256SUMS.sums", want: manifest.FormatChecksum},
		{name: "txt extension", path: "sums.txt", want: manifest.FormatChecksum},
		{name: "unknown extension falls back to json", path: "manifest.bin", want: manifest.FormatJSON},
		{name: "bad explicit format", format: "xml", path: "x.xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := manifestFormat(tt.format, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("manifestFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("manifestFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignalContext(t *testing.T) {
	ctx, cancel, wasInterrupted := signalContext()
	defer cancel()

	if wasInterrupted() {
		t.Fatal("interrupted before any signal")
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled after signal")
	}
	if !wasInterrupted() {
		t.Error("interrupted flag not set after signal")
	}
}
