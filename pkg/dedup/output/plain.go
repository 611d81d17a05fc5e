package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as simple line-oriented text suitable for
// scripting and piping. No colors or styling are applied.
//
// Hash results are written as checksum lines: `<digest>  <path>` when a
// single algorithm was used, or `<algorithm>:<digest>  <path>` when several
// were. Single-algorithm output is accepted back by the verify command and
// by coreutils checkers.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	if len(r.Hashes) > 0 {
		f.writeHashes(w, r)
	}
	if r.Duplicates != nil {
		if err := f.writeDuplicates(w, r.Duplicates); err != nil {
			return err
		}
	}
	if r.Verification != nil {
		f.writeVerification(w, r)
	}
	if r.Resolution != nil {
		f.writeResolution(w, r)
	}
	if len(r.Largest) > 0 {
		if err := f.writeLargest(w, r.Largest); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) writeHashes(w *bytes.Buffer, r *Report) {
	single := true
	for _, h := range r.Hashes {
		if len(h.Digests) > 1 {
			single = false
			break
		}
	}

	for _, h := range r.Hashes {
		for _, algo := range h.Digests.Algorithms() {
			if single {
				fmt.Fprintf(w, "%s  %s\n", h.Digests[algo], h.Path)
			} else {
				fmt.Fprintf(w, "%s:%s  %s\n", algo, h.Digests[algo], h.Path)
			}
		}
	}
}

func (f *PlainFormatter) writeDuplicates(w *bytes.Buffer, d *DuplicateReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	if _, err := tw.Write([]byte("DIGEST\tSIZE\tROLE\tPATH\n")); err != nil {
		return err
	}
	for _, g := range d.Groups {
		prefix := g.Digest
		if len(prefix) > 12 {
			prefix = prefix[:12]
		}
		fmt.Fprintf(tw, "%s\t%d\toriginal\t%s\n", prefix, g.Size, g.Original().Path)
		for _, m := range g.Duplicates() {
			fmt.Fprintf(tw, "%s\t%d\tduplicate\t%s\n", prefix, g.Size, m.Path)
		}
	}
	return tw.Flush()
}

func (f *PlainFormatter) writeVerification(w *bytes.Buffer, r *Report) {
	v := r.Verification
	for _, res := range v.Results {
		fmt.Fprintf(w, "%s  %s\n", res.Status, res.Path)
	}
	fmt.Fprintf(w, "verified=%d failed=%d missing=%d errors=%d\n",
		v.Verified, v.Failed, v.Missing, v.Errors)
}

func (f *PlainFormatter) writeResolution(w *bytes.Buffer, r *Report) {
	res := r.Resolution
	verb := "removed"
	if res.Policy == "relocate" {
		verb = "moved"
	}
	if res.DryRun {
		verb = "would-remove"
		if res.Policy == "relocate" {
			verb = "would-move"
		}
	}

	for _, a := range res.Actions {
		if a.Dest != "" {
			fmt.Fprintf(w, "%s  %s  %s\n", verb, a.Path, a.Dest)
		} else {
			fmt.Fprintf(w, "%s  %s\n", verb, a.Path)
		}
	}
	for _, fail := range res.Failures {
		fmt.Fprintf(w, "failed  %s  %s\n", fail.Path, fail.Reason)
	}
}

func (f *PlainFormatter) writeLargest(w *bytes.Buffer, files []LargeFile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	if _, err := tw.Write([]byte("SIZE\tPATH\n")); err != nil {
		return err
	}
	for _, file := range files {
		if _, err := tw.Write([]byte(file.SizeHuman + "\t" + file.Path + "\n")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
