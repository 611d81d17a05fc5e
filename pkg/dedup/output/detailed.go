package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// timeLayout is used for modification times in detailed output.
const timeLayout = "2006-01-02 15:04:05"

// DetailedFormatter formats output with colors and styling using lipgloss.
// It produces a visually rich report suitable for terminal display, with a
// block per file and upper-cased algorithm labels.
type DetailedFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *DetailedFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if len(r.Hashes) > 0 {
		f.writeHashes(w, r)
	}
	if r.Duplicates != nil {
		f.writeDuplicates(w, r.Duplicates)
	}
	if r.Verification != nil {
		f.writeVerification(w, r)
	}
	if r.Resolution != nil {
		f.writeResolution(w, r)
	}
	if len(r.Largest) > 0 {
		f.writeLargest(w, r.Largest)
	}

	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}
	return nil
}

// formatHeader builds the header box with run metadata.
func (f *DetailedFormatter) formatHeader(r *Report) string {
	var lines []string

	title := TitleStyle.Render("dedup " + r.Command)
	lines = append(lines, title)

	if len(r.Sources) > 0 {
		label := LabelStyle.Render("Source:")
		value := ValueStyle.Render(strings.Join(r.Sources, ", "))
		lines = append(lines, fmt.Sprintf("%s %s", label, value))
	}

	if r.Stats != nil {
		label := LabelStyle.Render("Scanned:")
		value := ValueStyle.Render(fmt.Sprintf("%d files in %s",
			r.Stats.FilesScanned, formatDuration(r.Stats.Duration)))
		line := fmt.Sprintf("%s %s", label, value)
		if skipped := r.Stats.EmptySkipped + r.Stats.IgnoredSkipped; skipped > 0 {
			line += "  " + MutedStyle.Render(fmt.Sprintf("(%d skipped)", skipped))
		}
		lines = append(lines, line)
	}

	if r.Interrupted {
		lines = append(lines, WarningStyle.Bold(true).Render("Run interrupted by user"))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// writeHashes writes one block per hashed file.
func (f *DetailedFormatter) writeHashes(w *bytes.Buffer, r *Report) {
	for _, h := range r.Hashes {
		w.WriteString(PathStyle.Render(h.Path))
		w.WriteString(MutedStyle.Render(fmt.Sprintf("  (%s, %s)",
			humanize.IBytes(uint64(h.Size)), h.ModTime.Format(timeLayout))))
		w.WriteString("\n")

		for _, algo := range h.Digests.Algorithms() {
			label := LabelStyle.Render(padRight(algo.Label(), 8))
			value := DigestStyle.Render(h.Digests[algo])
			fmt.Fprintf(w, "  %s %s\n", label, value)
		}
		w.WriteString("\n")
	}
}

// writeDuplicates writes one block per duplicate group.
func (f *DetailedFormatter) writeDuplicates(w *bytes.Buffer, d *DuplicateReport) {
	if len(d.Groups) == 0 {
		w.WriteString(MutedStyle.Render("  No duplicates found\n"))
		return
	}

	for i, g := range d.Groups {
		prefix := g.Digest
		if len(prefix) > 12 {
			prefix = prefix[:12]
		}
		header := fmt.Sprintf("Group %d  %s %s  %s each",
			i+1,
			d.Algorithm.Label(),
			DigestStyle.Render(prefix),
			humanize.IBytes(uint64(g.Size)))
		w.WriteString(TitleStyle.Render(header))
		w.WriteString("\n")

		original := g.Original()
		fmt.Fprintf(w, "  %s %s  %s\n",
			SuccessStyle.Render("keep"),
			PathStyle.Render(original.Path),
			MutedStyle.Render(original.ModTime.Format(timeLayout)))
		for _, m := range g.Duplicates() {
			fmt.Fprintf(w, "  %s  %s  %s\n",
				WarningStyle.Render("dup"),
				PathStyle.Render(m.Path),
				MutedStyle.Render(m.ModTime.Format(timeLayout)))
		}
		w.WriteString("\n")
	}
}

// writeVerification writes per-status sections for a verification report.
func (f *DetailedFormatter) writeVerification(w *bytes.Buffer, r *Report) {
	v := r.Verification

	for _, res := range v.Results {
		switch {
		case len(res.Mismatches) > 0:
			fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("FAILED "), PathStyle.Render(res.Path))
			for _, mm := range res.Mismatches {
				label := LabelStyle.Render(padRight(mm.Algorithm.Label(), 8))
				fmt.Fprintf(w, "  %s expected %s\n", label, DigestStyle.Render(mm.Expected))
				fmt.Fprintf(w, "  %s actual   %s\n", label, ErrorStyle.Render(mm.Actual))
			}
		case res.Reason != "":
			style := ErrorStyle
			tag := "ERROR  "
			if res.Status == "missing" {
				style = WarningStyle
				tag = "MISSING"
			}
			fmt.Fprintf(w, "%s %s  %s\n", style.Render(tag),
				PathStyle.Render(res.Path), MutedStyle.Render(res.Reason))
		default:
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("OK     "), PathStyle.Render(res.Path))
		}
	}
	w.WriteString("\n")
}

// writeResolution writes actions taken on duplicates.
func (f *DetailedFormatter) writeResolution(w *bytes.Buffer, r *Report) {
	res := r.Resolution

	verb := "removed"
	if res.Policy == "relocate" {
		verb = "moved"
	}
	if res.DryRun {
		verb = "would have " + verb
	}

	for _, a := range res.Actions {
		line := fmt.Sprintf("  %s %s", verb, PathStyle.Render(a.Path))
		if a.Dest != "" {
			line += MutedStyle.Render(" to ") + PathStyle.Render(a.Dest)
		}
		w.WriteString(line + "\n")
	}
	for _, fail := range res.Failures {
		fmt.Fprintf(w, "  %s %s  %s\n", ErrorStyle.Render("failed"),
			PathStyle.Render(fail.Path), MutedStyle.Render(fail.Reason))
	}
	if res.Aborted {
		w.WriteString(WarningStyle.Render("  aborted before completion") + "\n")
	}
	w.WriteString("\n")
}

// writeLargest writes a size-ranked file table.
func (f *DetailedFormatter) writeLargest(w *bytes.Buffer, files []LargeFile) {
	maxWidth := 8
	for _, file := range files {
		if len(file.SizeHuman) > maxWidth {
			maxWidth = len(file.SizeHuman)
		}
	}

	for _, file := range files {
		size := SizeStyle.Render(padLeft(file.SizeHuman, maxWidth))
		fmt.Fprintf(w, "  %s  %s\n", size, PathStyle.Render(file.Path))
	}
}

// formatFooter builds the footer box with summary information.
func (f *DetailedFormatter) formatFooter(r *Report) string {
	var parts []string

	if r.Duplicates != nil {
		s := r.Duplicates.Summary
		parts = append(parts,
			LabelStyle.Render("Sets:")+" "+ValueStyle.Render(fmt.Sprintf("%d", s.Sets)),
			LabelStyle.Render("Duplicates:")+" "+ValueStyle.Render(fmt.Sprintf("%d", s.Duplicates)),
			LabelStyle.Render("Wasted:")+" "+SizeStyle.Render(humanize.IBytes(uint64(s.WastedBytes))))
	}

	if r.Verification != nil {
		v := r.Verification
		parts = append(parts,
			SuccessStyle.Render(fmt.Sprintf("%d verified", v.Verified)),
			ErrorStyle.Render(fmt.Sprintf("%d failed", v.Failed)),
			WarningStyle.Render(fmt.Sprintf("%d missing", v.Missing)),
			ErrorStyle.Render(fmt.Sprintf("%d errors", v.Errors)))
	}

	if r.Resolution != nil {
		res := r.Resolution
		noun := "Reclaimed"
		if res.Policy == "relocate" {
			noun = "Relocated"
		}
		parts = append(parts,
			LabelStyle.Render("Processed:")+" "+ValueStyle.Render(fmt.Sprintf("%d", res.Processed)),
			LabelStyle.Render(noun+":")+" "+SizeStyle.Render(humanize.IBytes(uint64(res.Bytes))))
		if res.Skipped > 0 {
			parts = append(parts, MutedStyle.Render(fmt.Sprintf("%d skipped", res.Skipped)))
		}
	}

	if len(r.Hashes) > 0 {
		parts = append(parts,
			LabelStyle.Render("Files:")+" "+ValueStyle.Render(fmt.Sprintf("%d", len(r.Hashes))))
	}

	if len(parts) == 0 {
		parts = append(parts, MutedStyle.Render("Nothing to report"))
	}
	parts = append(parts, MutedStyle.Render("Use -o plain for unformatted output"))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatWarnings builds a warning block.
func (f *DetailedFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")
	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}
	return sb.String()
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("detailed", func() Formatter {
		return &DetailedFormatter{}
	})
}

// Ensure DetailedFormatter implements Formatter.
var _ Formatter = (*DetailedFormatter)(nil)
