package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"time"

	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

// DefaultChunkSize is the read buffer size used when none is configured.
const DefaultChunkSize = 64 * 1024

// Result is the structured record produced for one hashed file.
type Result struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes at hashing time.
	Size int64 `json:"size" yaml:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`

	// Digests maps each requested algorithm to its hex digest value.
	Digests DigestSet `json:"hashes" yaml:"hashes"`

	// Duration is the time spent reading and hashing the file.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Sum computes the digests of the file at path for every requested algorithm,
// reading the file exactly once. Every hash state is fed from the same chunk
// sequence, so adding algorithms never adds passes over the file.
//
// An unsupported algorithm returns ErrUnsupportedAlgorithm before any bytes
// are read. A read failure discards all partial digests and returns the error.
func Sum(path string, algos []Algorithm, chunkSize int) (DigestSet, error) {
	if len(algos) == 0 {
		return nil, errors.New("no algorithms requested")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	hashes := make([]hash.Hash, len(algos))
	writers := make([]io.Writer, len(algos))
	for i, algo := range algos {
		h, err := newHash(algo)
		if err != nil {
			return nil, err
		}
		hashes[i] = h
		writers[i] = h
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(io.MultiWriter(writers...), f, buf); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	set := make(DigestSet, len(algos))
	for i, algo := range algos {
		set[algo] = hex.EncodeToString(hashes[i].Sum(nil))
	}
	return set, nil
}

// File hashes a single file and returns the full structured record:
// path, size, modification time, digests, and processing duration.
// The file is stated before hashing so the record reflects the size and
// timestamp the digests were computed against.
func File(path string, algos []Algorithm, chunkSize int) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stating %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}

	start := time.Now()
	set, err := Sum(path, algos, chunkSize)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Digests:  set,
		Duration: time.Since(start),
	}, nil
}

// Record hashes the file described by an existing FileRecord, reusing its
// metadata instead of re-stating the file.
func Record(rec types.FileRecord, algos []Algorithm, chunkSize int) (*Result, error) {
	start := time.Now()
	set, err := Sum(rec.Path, algos, chunkSize)
	if err != nil {
		return nil, err
	}
	return &Result{
		Path:     rec.Path,
		Size:     rec.Size,
		ModTime:  rec.ModTime,
		Digests:  set,
		Duration: time.Since(start),
	}, nil
}
