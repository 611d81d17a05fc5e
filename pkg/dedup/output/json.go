package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure. Sections that were
// not produced by the command are omitted.
type jsonOutput struct {
	Meta         jsonMeta          `json:"meta"`
	Stats        *ScanStats        `json:"stats,omitempty"`
	Hashes       []jsonHash        `json:"hashes,omitempty"`
	Duplicates   *jsonDuplicates   `json:"duplicates,omitempty"`
	Verification *jsonVerification `json:"verification,omitempty"`
	Resolution   *jsonResolution   `json:"resolution,omitempty"`
	Largest      []LargeFile       `json:"largest,omitempty"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Command     string   `json:"command"`
	Sources     []string `json:"sources,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Interrupted bool     `json:"interrupted"`
}

// jsonHash represents one hashed file in JSON output.
type jsonHash struct {
	Path    string            `json:"path"`
	Size    int64             `json:"size"`
	ModTime time.Time         `json:"mod_time"`
	Hashes  map[string]string `json:"hashes"`
}

// jsonDuplicates represents duplicate groups in JSON output.
type jsonDuplicates struct {
	Algorithm string          `json:"algorithm"`
	Groups    []jsonDupeGroup `json:"groups"`
	Files     int             `json:"duplicate_files"`
	Wasted    int64           `json:"wasted_bytes"`
}

type jsonDupeGroup struct {
	Digest     string   `json:"digest"`
	Size       int64    `json:"size"`
	Original   string   `json:"original"`
	Duplicates []string `json:"duplicates"`
}

// jsonVerification represents a verification report in JSON output.
type jsonVerification struct {
	RunID    string       `json:"run_id"`
	Verified int          `json:"verified"`
	Failed   int          `json:"failed"`
	Missing  int          `json:"missing"`
	Errors   int          `json:"errors"`
	Results  []jsonVerify `json:"results"`
}

type jsonVerify struct {
	Path       string         `json:"path"`
	Status     string         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Mismatches []jsonMismatch `json:"mismatches,omitempty"`
}

type jsonMismatch struct {
	Algorithm string `json:"algorithm"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual"`
}

// jsonResolution represents a resolution outcome in JSON output.
type jsonResolution struct {
	RunID     string   `json:"run_id"`
	Policy    string   `json:"policy"`
	DryRun    bool     `json:"dry_run"`
	Processed int      `json:"processed"`
	Bytes     int64    `json:"bytes"`
	Skipped   int      `json:"skipped"`
	Failures  int      `json:"failures"`
	Aborted   bool     `json:"aborted"`
	Actions   []string `json:"actions,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Report) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Report to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Report) jsonOutput {
	out := jsonOutput{
		Meta: jsonMeta{
			Command:     r.Command,
			Sources:     r.Sources,
			Warnings:    r.Warnings,
			Interrupted: r.Interrupted,
		},
		Stats:   r.Stats,
		Largest: r.Largest,
	}

	for _, h := range r.Hashes {
		out.Hashes = append(out.Hashes, jsonHash{
			Path:    h.Path,
			Size:    h.Size,
			ModTime: h.ModTime,
			Hashes:  digestNames(h.Digests),
		})
	}

	if r.Duplicates != nil {
		dup := &jsonDuplicates{
			Algorithm: r.Duplicates.Algorithm.String(),
			Files:     r.Duplicates.Summary.Duplicates,
			Wasted:    r.Duplicates.Summary.WastedBytes,
		}
		for _, g := range r.Duplicates.Groups {
			group := jsonDupeGroup{
				Digest:   g.Digest,
				Size:     g.Size,
				Original: g.Original().Path,
			}
			for _, m := range g.Duplicates() {
				group.Duplicates = append(group.Duplicates, m.Path)
			}
			dup.Groups = append(dup.Groups, group)
		}
		out.Duplicates = dup
	}

	if r.Verification != nil {
		v := &jsonVerification{
			RunID:    r.Verification.RunID,
			Verified: r.Verification.Verified,
			Failed:   r.Verification.Failed,
			Missing:  r.Verification.Missing,
			Errors:   r.Verification.Errors,
		}
		for _, res := range r.Verification.Results {
			jv := jsonVerify{
				Path:   res.Path,
				Status: string(res.Status),
				Reason: res.Reason,
			}
			for _, mm := range res.Mismatches {
				jv.Mismatches = append(jv.Mismatches, jsonMismatch{
					Algorithm: mm.Algorithm.String(),
					Expected:  mm.Expected,
					Actual:    mm.Actual,
				})
			}
			v.Results = append(v.Results, jv)
		}
		out.Verification = v
	}

	if r.Resolution != nil {
		res := &jsonResolution{
			RunID:     r.Resolution.RunID,
			Policy:    r.Resolution.Policy,
			DryRun:    r.Resolution.DryRun,
			Processed: r.Resolution.Processed,
			Bytes:     r.Resolution.Bytes,
			Skipped:   r.Resolution.Skipped,
			Failures:  len(r.Resolution.Failures),
			Aborted:   r.Resolution.Aborted,
		}
		for _, a := range r.Resolution.Actions {
			res.Actions = append(res.Actions, a.Path)
		}
		out.Resolution = res
	}

	return out
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
