package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/dedup/pkg/dedup/config"
	"github.com/jamesainslie/dedup/pkg/dedup/manifest"
	"github.com/jamesainslie/dedup/pkg/dedup/output"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <manifest>",
	Short: "Re-check files against a manifest",
	Long: `Verify re-hashes every file listed in a manifest and classifies it as
verified, failed, missing, or error. The manifest may be a JSON or YAML
document written by the hash command, or plain checksum lines
(<digest>  <path>); for checksum lines, -a names the algorithm the
digests were computed with.

The exit status is non-zero when any file failed, went missing, or could
not be read.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringP("algorithm", "a", "", "digest algorithm for checksum-line manifests")

	rootCmd.AddCommand(verifyCmd)
}

// runVerify is the verify command handler.
func runVerify(cmd *cobra.Command, args []string) error {
	path, err := config.ExpandPath(args[0])
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

	entries, err := manifest.ReadFile(path, algos[0])
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	chunkSize, err := resolveChunkSize()
	if err != nil {
		return err
	}

	ctx, cancel, wasInterrupted := signalContext()
	defer cancel()

	opts := manifest.VerifyOptions{ChunkSize: chunkSize}
	if showProgress() {
		total := len(entries)
		checked := 0
		opts.OnResult = func(manifest.Result) {
			checked++
			fmt.Fprintf(os.Stderr, "\rVerifying: %d/%d files", checked, total)
		}
	}

	verifyReport := manifest.Verify(ctx, entries, opts)
	clearProgress()

	report := &output.Report{
		Command:      "verify",
		Sources:      []string{path},
		Verification: verifyReport,
		Interrupted:  wasInterrupted(),
	}
	if err := renderReport(report); err != nil {
		return err
	}

	if !verifyReport.AllVerified() {
		return fmt.Errorf("verification failed: %d failed, %d missing, %d errors",
			verifyReport.Failed, verifyReport.Missing, verifyReport.Errors)
	}
	return nil
}
