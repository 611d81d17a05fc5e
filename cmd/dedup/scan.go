package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dedup/pkg/dedup/config"
	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/dupes"
	"github.com/jamesainslie/dedup/pkg/dedup/output"
	"github.com/jamesainslie/dedup/pkg/dedup/resolve"
	"github.com/jamesainslie/dedup/pkg/dedup/scanner"
	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dirs...]",
	Short: "Find duplicate files by content",
	Long: `Scan walks the given directory trees, hashes every regular file,
and groups files with identical digests. The oldest file in each group is
the original; the rest are duplicates.

With --remove or --move-to, duplicates are deleted or relocated. Each
action is confirmed on the terminal unless --non-interactive is set.
--dry-run previews the actions without touching anything.`,
	Args: cobra.ArbitraryArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringP("algorithm", "a", "", "digest algorithm used for grouping")
	scanCmd.Flags().Bool("remove", false, "delete duplicate files")
	scanCmd.Flags().String("move-to", "", "move duplicate files into this directory")
	scanCmd.Flags().BoolP("dry-run", "d", false, "preview actions without touching files")
	scanCmd.Flags().BoolP("non-interactive", "n", false, "act without per-file confirmation")

	rootCmd.AddCommand(scanCmd)
}

// runScan is the scan command handler.
func runScan(cmd *cobra.Command, args []string) error {
	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	algoName, _ := cmd.Flags().GetString("algorithm")
	var names []string
	if algoName != "" {
		names = []string{algoName}
	}
	algos, err := resolveAlgorithms(names)
	if err != nil {
		return err
	}
	algo := algos[0]

	remove, _ := cmd.Flags().GetBool("remove")
	moveTo, _ := cmd.Flags().GetString("move-to")
	if remove && moveTo != "" {
		return fmt.Errorf("--remove and --move-to are mutually exclusive")
	}

	ctx, cancel, wasInterrupted := signalContext()
	defer cancel()

	scanRes, hashResults, warnings, err := scanAndHash(ctx, roots, algos)
	if err != nil {
		return err
	}

	groups := dupes.Find(hashResults, algo)
	report := &output.Report{
		Command: "scan",
		Sources: roots,
		Stats:   outputStats(scanRes),
		Duplicates: &output.DuplicateReport{
			Algorithm: algo,
			Groups:    groups,
			Summary:   dupes.Summarize(groups),
		},
		Warnings:    warnings,
		Interrupted: wasInterrupted(),
	}

	if (remove || moveTo != "") && !wasInterrupted() {
		outcome, err := resolveDuplicates(ctx, cmd, groups, moveTo)
		if err != nil {
			return err
		}
		report.Resolution = outcome
		report.Interrupted = wasInterrupted() || outcome.Aborted
	}

	return renderReport(report)
}

// scanAndHash walks the roots and hashes every collected file. Warnings for
// unreadable paths are returned rather than failing the run.
func scanAndHash(ctx context.Context, roots []string, algos []digest.Algorithm) (*types.ScanResult, []*digest.Result, []string, error) {
	opts, err := buildScannerOptions(roots)
	if err != nil {
		return nil, nil, nil, err
	}

	scanRes, err := scanner.New(opts).Scan(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scan failed: %w", err)
	}
	clearProgress()

	chunkSize, err := resolveChunkSize()
	if err != nil {
		return nil, nil, nil, err
	}

	var hashed atomic.Int64
	poolOpts := digest.PoolOptions{
		Algorithms: algos,
		ChunkSize:  chunkSize,
		Workers:    viper.GetInt("workers"),
	}
	if showProgress() {
		total := len(scanRes.Files)
		poolOpts.OnResult = func(*digest.Result) {
			fmt.Fprintf(os.Stderr, "\rHashing: %d/%d files", hashed.Add(1), total)
		}
	}

	results, failures := digest.HashAll(ctx, scanRes.Files, poolOpts)
	clearProgress()

	warnings := scanWarnings(scanRes.Errors)
	warnings = append(warnings, hashWarnings(failures)...)
	return scanRes, results, warnings, nil
}

// resolveDuplicates hands duplicate groups to the resolution engine with
// options assembled from the scan command flags.
func resolveDuplicates(ctx context.Context, cmd *cobra.Command, groups []dupes.Group, moveTo string) (*resolve.Outcome, error) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")

	opts := resolve.Options{
		Policy: resolve.Remove,
		DryRun: dryRun,
	}
	if moveTo != "" {
		target, err := config.ExpandPath(moveTo)
		if err != nil {
			return nil, err
		}
		opts.Policy = resolve.Relocate
		opts.TargetDir = target
	}

	if !nonInteractive && !dryRun {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return nil, fmt.Errorf("stdin is not a terminal; use --non-interactive or --dry-run")
		}
		opts.Prompter = newStdinPrompter(opts.Policy, opts.TargetDir)
	}

	outcome, err := resolve.Apply(ctx, groups, opts)
	if err != nil {
		if outcome != nil && outcome.Aborted && ctx.Err() != nil {
			return outcome, nil
		}
		return nil, err
	}
	return outcome, nil
}
