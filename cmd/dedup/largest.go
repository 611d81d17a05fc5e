package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/dedup/pkg/dedup/output"
	"github.com/jamesainslie/dedup/pkg/dedup/scanner"
	"github.com/jamesainslie/dedup/pkg/dedup/topk"
	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

var largestCmd = &cobra.Command{
	Use:   "largest [dirs...]",
	Short: "Rank the largest files in a tree",
	Long: `Largest walks the given directory trees and reports the N biggest
files, largest first. Only the top N are held in memory, so arbitrarily
large trees can be ranked.`,
	Args: cobra.ArbitraryArgs,
	RunE: runLargest,
}

func init() {
	largestCmd.Flags().IntP("count", "n", 20, "number of files to report")

	rootCmd.AddCommand(largestCmd)
}

// runLargest is the largest command handler.
func runLargest(cmd *cobra.Command, args []string) error {
	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	opts, err := buildScannerOptions(roots)
	if err != nil {
		return err
	}

	ctx, cancel, wasInterrupted := signalContext()
	defer cancel()

	res, err := scanner.New(opts).Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	clearProgress()

	collector := topk.New(count)
	for _, f := range res.Files {
		collector.Add(f)
	}

	ranked := collector.Ranked()
	largest := make([]output.LargeFile, 0, len(ranked))
	for _, f := range ranked {
		largest = append(largest, output.LargeFile{
			Path:      f.Path,
			Size:      f.Size,
			SizeHuman: types.FormatSize(f.Size),
			ModTime:   f.ModTime,
		})
	}

	report := &output.Report{
		Command:     "largest",
		Sources:     roots,
		Stats:       outputStats(res),
		Largest:     largest,
		Warnings:    scanWarnings(res.Errors),
		Interrupted: wasInterrupted(),
	}
	return renderReport(report)
}
