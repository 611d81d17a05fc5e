package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables set by go build -ldflags.
var (
	version = "dev"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version, revision, and build toolchain of dedup.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// runVersion prints a one-line version banner. When ldflags left the
// revision unset, the VCS revision embedded in build info is used instead.
func runVersion(cmd *cobra.Command, args []string) {
	rev := commit
	if rev == "" {
		rev = vcsRevision()
	}
	if rev != "" {
		fmt.Printf("dedup %s (%s) %s %s/%s\n",
			version, rev, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return
	}
	fmt.Printf("dedup %s %s %s/%s\n",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// vcsRevision returns the short VCS revision recorded in build info, if any.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return shortRevision(setting.Value)
		}
	}
	return ""
}

// shortRevision abbreviates a full VCS hash to 12 characters.
func shortRevision(value string) string {
	if len(value) > 12 {
		return value[:12]
	}
	return value
}
