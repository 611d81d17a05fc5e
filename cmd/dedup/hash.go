package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dedup/pkg/dedup/config"
	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/manifest"
	"github.com/jamesainslie/dedup/pkg/dedup/output"
	"github.com/jamesainslie/dedup/pkg/dedup/scanner"
	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

var hashCmd = &cobra.Command{
	Use:   "hash <path>...",
	Short: "Compute content digests for files",
	Long: `Hash computes one or more content digests for each given file. A
directory argument is walked and every regular file under it is hashed.
All requested digests are computed in a single read pass per file.

With -o, the results are also written as a manifest that the verify
command can check later.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().StringSliceP("algorithms", "a", nil, "digest algorithms to compute (repeatable or comma-separated)")
	hashCmd.Flags().StringP("out", "o", "", "write a manifest to this file")
	hashCmd.Flags().String("manifest-format", "", "manifest file format (json, yaml, checksum; default from extension)")

	rootCmd.AddCommand(hashCmd)
}

// runHash is the hash command handler.
func runHash(cmd *cobra.Command, args []string) error {
	names, _ := cmd.Flags().GetStringSlice("algorithms")
	algos, err := resolveAlgorithms(names)
	if err != nil {
		return err
	}

	chunkSize, err := resolveChunkSize()
	if err != nil {
		return err
	}

	ctx, cancel, wasInterrupted := signalContext()
	defer cancel()

	files, warnings, err := collectHashTargets(ctx, args)
	if err != nil {
		return err
	}

	start := time.Now()
	results, failures := digest.HashAll(ctx, files, digest.PoolOptions{
		Algorithms: algos,
		ChunkSize:  chunkSize,
		Workers:    viper.GetInt("workers"),
	})
	elapsed := time.Since(start)
	warnings = append(warnings, hashWarnings(failures)...)

	var hashedBytes int64
	hashes := make([]digest.Result, 0, len(results))
	for _, r := range results {
		hashes = append(hashes, *r)
		hashedBytes += r.Size
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" && !wasInterrupted() {
		if err := writeManifest(cmd, outPath, results, algos[0]); err != nil {
			return err
		}
		printVerbose("Wrote manifest with %d entries to %s", len(results), outPath)
	}

	if elapsed > 0 && !getQuiet() {
		rate := float64(hashedBytes) / elapsed.Seconds()
		printVerbose("Hashed %s in %s (%s/s)",
			humanize.IBytes(uint64(hashedBytes)), elapsed.Round(time.Millisecond),
			humanize.IBytes(uint64(rate)))
	}

	report := &output.Report{
		Command:     "hash",
		Sources:     args,
		Hashes:      hashes,
		Warnings:    warnings,
		Interrupted: wasInterrupted(),
	}
	return renderReport(report)
}

// collectHashTargets resolves the hash command arguments into file records.
// File arguments are taken as-is; directory arguments are walked with the
// configured ignore rules.
func collectHashTargets(ctx context.Context, args []string) ([]types.FileRecord, []string, error) {
	var files []types.FileRecord
	var warnings []string
	var dirs []string

	for _, arg := range args {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			return nil, nil, err
		}

		info, err := os.Stat(expanded)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if info.IsDir() {
			dirs = append(dirs, expanded)
			continue
		}
		files = append(files, types.FileRecord{
			Path:    expanded,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	if len(dirs) > 0 {
		opts, err := buildScannerOptions(dirs)
		if err != nil {
			return nil, nil, err
		}
		res, err := scanner.New(opts).Scan(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("scan failed: %w", err)
		}
		clearProgress()
		files = append(files, res.Files...)
		warnings = scanWarnings(res.Errors)
	}

	return files, warnings, nil
}

// writeManifest persists hash results to a manifest file. The format comes
// from --manifest-format, falling back to the file extension and finally to
// JSON.
func writeManifest(cmd *cobra.Command, path string, results []*digest.Result, algo digest.Algorithm) error {
	formatName, _ := cmd.Flags().GetString("manifest-format")
	format, err := manifestFormat(formatName, path)
	if err != nil {
		return err
	}

	entries := manifest.FromResults(results)
	if err := manifest.WriteFile(path, entries, format, algo); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// manifestFormat picks the manifest format from an explicit name or the
// target file extension.
func manifestFormat(name, path string) (manifest.Format, error) {
	switch name {
	case "json":
		return manifest.FormatJSON, nil
	case "yaml", "yml":
		return manifest.FormatYAML, nil
	case "checksum", "sums":
		return manifest.FormatChecksum, nil
	case "":
	default:
		return "", fmt.Errorf("unknown manifest format %q (json, yaml, checksum)", name)
	}

	switch {
	case hasSuffixFold(path, ".json"):
		return manifest.FormatJSON, nil
	case hasSuffixFold(path, ".yaml"), hasSuffixFold(path, ".yml"):
		return manifest.FormatYAML, nil
	case hasSuffixFold(path, ".sum"), hasSuffixFold(path, ".sums"), hasSuffixFold(path, ".txt"):
		return manifest.FormatChecksum, nil
	default:
		return manifest.FormatJSON, nil
	}
}

func hasSuffixFold(s, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(s), suffix)
}
