package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
)

// FromResults converts hashed file results into manifest entries.
func FromResults(results []*digest.Result) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, res := range results {
		entries = append(entries, Entry{
			Path:     res.Path,
			Size:     res.Size,
			ModTime:  res.ModTime,
			Hashes:   res.Digests,
			Duration: res.Duration,
		})
	}
	return entries
}

// Write serializes entries to w in the given format.
//
// The checksum form writes one `<digest>  <path>` line per entry using algo;
// entries lacking a digest for algo are skipped. The structured forms carry
// the full entry including every recorded algorithm.
func Write(w io.Writer, entries []Entry, format Format, algo digest.Algorithm) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(entries)
	case FormatChecksum:
		for _, e := range entries {
			value, ok := e.Hashes.Value(algo)
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s  %s\n", value, e.Path); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown manifest format: %q", format)
	}
}

// WriteFile serializes entries to a file, creating or truncating it.
func WriteFile(path string, entries []Entry, format Format, algo digest.Algorithm) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, entries, format, algo); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// Read parses manifest data, detecting its form.
//
// Data whose first non-blank byte is '{' or '[' is parsed as JSON. Data that
// looks like a YAML document list is parsed as YAML. Anything else is parsed
// as the line-oriented checksum form, with algo supplying the algorithm for
// every line. A manifest that cannot be parsed at all returns
// ErrManifestParse.
func Read(r io.Reader, algo digest.Algorithm) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty manifest", ErrManifestParse)
	}

	switch {
	case trimmed[0] == '{':
		var single Entry
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
		}
		return []Entry{single}, nil
	case trimmed[0] == '[':
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
		}
		return entries, nil
	case looksLikeYAML(trimmed):
		var entries []Entry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
		}
		return entries, nil
	default:
		return parseChecksumLines(data, algo)
	}
}

// ReadFile parses a manifest file, detecting its form.
func ReadFile(path string, algo digest.Algorithm) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, algo)
}

// looksLikeYAML reports whether the data resembles a YAML entry list rather
// than checksum lines. A YAML list starts with a dash item; checksum lines
// start with a hex digest.
func looksLikeYAML(trimmed []byte) bool {
	return bytes.HasPrefix(trimmed, []byte("- ")) ||
		bytes.HasPrefix(trimmed, []byte("---"))
}

// parseChecksumLines parses the `<digest>  <path>` line form. Blank lines and
// '#' comments are skipped. An optional '*' before the path, conventionally
// marking binary-mode hashing, is stripped and otherwise ignored. A line that
// does not split into digest and path is skipped, not fatal; only a manifest
// yielding no entries at all fails with ErrManifestParse.
func parseChecksumLines(data []byte, algo digest.Algorithm) ([]Entry, error) {
	var entries []Entry

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			logger().Warn("skipping malformed manifest line", "line", lineNo)
			continue
		}
		value := fields[0]
		path := strings.TrimSpace(fields[1])
		path = strings.TrimPrefix(path, "*")
		if path == "" {
			logger().Warn("skipping manifest line with empty path", "line", lineNo)
			continue
		}

		entries = append(entries, Entry{
			Path:   path,
			Hashes: digest.DigestSet{algo: value},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrManifestParse)
	}
	return entries, nil
}
