package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Meta         yamlMeta          `yaml:"meta"`
	Stats        *ScanStats        `yaml:"stats,omitempty"`
	Hashes       []yamlHash        `yaml:"hashes,omitempty"`
	Duplicates   *yamlDuplicates   `yaml:"duplicates,omitempty"`
	Verification *yamlVerification `yaml:"verification,omitempty"`
	Resolution   *yamlResolution   `yaml:"resolution,omitempty"`
	Largest      []LargeFile       `yaml:"largest,omitempty"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	Command     string   `yaml:"command"`
	Sources     []string `yaml:"sources,omitempty"`
	Warnings    []string `yaml:"warnings,omitempty"`
	Interrupted bool     `yaml:"interrupted"`
}

// yamlHash represents one hashed file in YAML output.
type yamlHash struct {
	Path    string            `yaml:"path"`
	Size    int64             `yaml:"size"`
	ModTime time.Time         `yaml:"mod_time"`
	Hashes  map[string]string `yaml:"hashes"`
}

// yamlDuplicates represents duplicate groups in YAML output.
type yamlDuplicates struct {
	Algorithm string          `yaml:"algorithm"`
	Groups    []yamlDupeGroup `yaml:"groups"`
	Files     int             `yaml:"duplicate_files"`
	Wasted    int64           `yaml:"wasted_bytes"`
}

type yamlDupeGroup struct {
	Digest     string   `yaml:"digest"`
	Size       int64    `yaml:"size"`
	Original   string   `yaml:"original"`
	Duplicates []string `yaml:"duplicates"`
}

// yamlVerification represents a verification report in YAML output.
type yamlVerification struct {
	RunID    string       `yaml:"run_id"`
	Verified int          `yaml:"verified"`
	Failed   int          `yaml:"failed"`
	Missing  int          `yaml:"missing"`
	Errors   int          `yaml:"errors"`
	Results  []yamlVerify `yaml:"results"`
}

type yamlVerify struct {
	Path       string         `yaml:"path"`
	Status     string         `yaml:"status"`
	Reason     string         `yaml:"reason,omitempty"`
	Mismatches []yamlMismatch `yaml:"mismatches,omitempty"`
}

type yamlMismatch struct {
	Algorithm string `yaml:"algorithm"`
	Expected  string `yaml:"expected"`
	Actual    string `yaml:"actual"`
}

// yamlResolution represents a resolution outcome in YAML output.
type yamlResolution struct {
	RunID     string   `yaml:"run_id"`
	Policy    string   `yaml:"policy"`
	DryRun    bool     `yaml:"dry_run"`
	Processed int      `yaml:"processed"`
	Bytes     int64    `yaml:"bytes"`
	Skipped   int      `yaml:"skipped"`
	Failures  int      `yaml:"failures"`
	Aborted   bool     `yaml:"aborted"`
	Actions   []string `yaml:"actions,omitempty"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Report) error {
	output := f.buildOutput(r)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts Report to the YAML output structure.
func (f *YAMLFormatter) buildOutput(r *Report) yamlOutput {
	out := yamlOutput{
		Meta: yamlMeta{
			Command:     r.Command,
			Sources:     r.Sources,
			Warnings:    r.Warnings,
			Interrupted: r.Interrupted,
		},
		Stats:   r.Stats,
		Largest: r.Largest,
	}

	for _, h := range r.Hashes {
		out.Hashes = append(out.Hashes, yamlHash{
			Path:    h.Path,
			Size:    h.Size,
			ModTime: h.ModTime,
			Hashes:  digestNames(h.Digests),
		})
	}

	if r.Duplicates != nil {
		dup := &yamlDuplicates{
			Algorithm: r.Duplicates.Algorithm.String(),
			Files:     r.Duplicates.Summary.Duplicates,
			Wasted:    r.Duplicates.Summary.WastedBytes,
		}
		for _, g := range r.Duplicates.Groups {
			group := yamlDupeGroup{
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
		v := &yamlVerification{
			RunID:    r.Verification.RunID,
			Verified: r.Verification.Verified,
			Failed:   r.Verification.Failed,
			Missing:  r.Verification.Missing,
			Errors:   r.Verification.Errors,
		}
		for _, res := range r.Verification.Results {
			yv := yamlVerify{
				Path:   res.Path,
				Status: string(res.Status),
				Reason: res.Reason,
			}
			for _, mm := range res.Mismatches {
				yv.Mismatches = append(yv.Mismatches, yamlMismatch{
					Algorithm: mm.Algorithm.String(),
					Expected:  mm.Expected,
					Actual:    mm.Actual,
				})
			}
			v.Results = append(v.Results, yv)
		}
		out.Verification = v
	}

	if r.Resolution != nil {
		res := &yamlResolution{
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
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
