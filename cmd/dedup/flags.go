package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dedup/pkg/dedup/config"
	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/output"
	"github.com/jamesainslie/dedup/pkg/dedup/scanner"
	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

// resolveAlgorithms returns the digest algorithms requested on the command
// line, falling back to the configured defaults.
func resolveAlgorithms(names []string) ([]digest.Algorithm, error) {
	if len(names) == 0 {
		names = viper.GetStringSlice("algorithms")
	}
	if len(names) == 0 {
		names = []string{config.DefaultAlgorithm}
	}
	algos, err := digest.ParseAll(names)
	if err != nil {
		return nil, fmt.Errorf("%w: supported algorithms are %v", err, digest.Supported())
	}
	return algos, nil
}

// resolveChunkSize parses the configured hashing buffer size.
func resolveChunkSize() (int, error) {
	raw := viper.GetString("chunk_size")
	if raw == "" {
		raw = config.DefaultChunkSize
	}
	size, err := types.ParseSize(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid chunk size %q: %w", raw, err)
	}
	return int(size), nil
}

// resolveMinSize parses the configured minimum file size.
func resolveMinSize() (int64, error) {
	raw := viper.GetString("min_size")
	if raw == "" {
		return 0, nil
	}
	size, err := types.ParseSize(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid minimum size %q: %w", raw, err)
	}
	return size, nil
}

// resolveRoots expands and deduplicates the directory arguments, defaulting
// to the current directory.
func resolveRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]bool, len(args))
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %w", arg, err)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		roots = append(roots, abs)
	}
	return roots, nil
}

// buildScannerOptions assembles scanner options from configuration and the
// given roots. An optional progress callback is attached for terminals.
func buildScannerOptions(roots []string) (scanner.Options, error) {
	minSize, err := resolveMinSize()
	if err != nil {
		return scanner.Options{}, err
	}

	opts := scanner.DefaultOptions()
	opts.Roots = roots
	opts.MinSize = minSize
	if ignore := viper.GetStringSlice("ignore"); len(ignore) > 0 {
		opts.Ignore = ignore
	}

	if showProgress() {
		opts.OnProgress = func(p types.ScanProgress) {
			fmt.Fprintf(os.Stderr, "\rScanning: %d files, %d dirs", p.FilesScanned, p.DirsScanned)
		}
	}
	return opts, nil
}

// showProgress reports whether transient progress lines should be written.
func showProgress() bool {
	return !getQuiet() && isatty.IsTerminal(os.Stderr.Fd())
}

// clearProgress erases a transient progress line if one was being drawn.
func clearProgress() {
	if showProgress() {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}

// signalContext returns a context cancelled by SIGINT or SIGTERM, plus a
// function reporting whether a signal arrived.
func signalContext() (context.Context, context.CancelFunc, func() bool) {
	ctx, cancel := context.WithCancel(context.Background())

	var interrupted atomic.Bool
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		clearProgress()
		printInfo("Interrupted, stopping...")
		interrupted.Store(true)
		cancel()
	}()

	return ctx, cancel, interrupted.Load
}

// renderReport formats the report with the configured formatter and writes
// it to stdout.
func renderReport(report *output.Report) error {
	format := viper.GetString("output")
	if format == "" {
		format = config.DefaultOutput
	}

	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// scanWarnings converts collected scan errors to warning strings.
func scanWarnings(errs []types.ScanError) []string {
	warnings := make([]string, 0, len(errs))
	for _, e := range errs {
		warnings = append(warnings, fmt.Sprintf("skipped %s: %s", e.Path, e.Error))
	}
	return warnings
}

// hashWarnings converts hashing failures to warning strings.
func hashWarnings(failures []digest.HashError) []string {
	warnings := make([]string, 0, len(failures))
	for _, f := range failures {
		warnings = append(warnings, fmt.Sprintf("failed to hash %s: %s", f.Path, f.Error))
	}
	return warnings
}

// outputStats converts a scan result to output statistics.
func outputStats(res *types.ScanResult) *output.ScanStats {
	return &output.ScanStats{
		DirsScanned:    res.DirsScanned,
		FilesScanned:   res.FilesScanned,
		EmptySkipped:   res.EmptySkipped,
		IgnoredSkipped: res.IgnoredSkipped,
		TotalSize:      res.TotalSize,
		Duration:       res.Elapsed,
	}
}
