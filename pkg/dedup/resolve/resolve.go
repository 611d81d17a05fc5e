// Package resolve acts on duplicate groups: removing redundant copies or
// relocating them into a quarantine directory. The first member of every
// group (the oldest file) is never touched.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jamesainslie/dedup/pkg/dedup/dupes"
	"github.com/jamesainslie/dedup/pkg/dedup/logging"
)

func logger() *logging.Logger { return logging.Get("resolve") }

// Policy selects what happens to duplicate members.
type Policy int

const (
	// Remove deletes duplicate files permanently.
	Remove Policy = iota
	// Relocate moves duplicate files into a target directory.
	Relocate
)

var policyNames = map[Policy]string{
	Remove:   "remove",
	Relocate: "relocate",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ErrUnknownPolicy is returned when a policy name cannot be parsed.
var ErrUnknownPolicy = errors.New("unknown resolution policy")

// ParsePolicy converts a policy name to its Policy value.
func ParsePolicy(name string) (Policy, error) {
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Answer is a user's response to a single confirmation prompt.
type Answer int

const (
	// No skips the current file.
	No Answer = iota
	// Yes acts on the current file.
	Yes
	// Quit aborts the rest of the run immediately.
	Quit
)

// Prompter asks the user whether to act on one duplicate. Prompts are
// issued serially in group order, then member order within each group.
type Prompter interface {
	Confirm(original, duplicate string) (Answer, error)
}

// Options configures a resolution run.
type Options struct {
	Policy    Policy
	TargetDir string // destination for Relocate
	DryRun    bool
	Prompter  Prompter // nil means act without asking
	OnAction  func(Action)
}

// Action records what happened (or would happen) to one duplicate.
type Action struct {
	Path string `json:"path" yaml:"path"`
	Dest string `json:"dest,omitempty" yaml:"dest,omitempty"`
	Size int64  `json:"size" yaml:"size"`
}

// Failure records a duplicate the run could not act on.
type Failure struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Outcome summarizes a resolution run.
type Outcome struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Policy    string    `json:"policy" yaml:"policy"`
	DryRun    bool      `json:"dry_run" yaml:"dry_run"`
	Processed int       `json:"processed" yaml:"processed"`
	Bytes     int64     `json:"bytes" yaml:"bytes"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
	Aborted   bool      `json:"aborted" yaml:"aborted"`
	Actions   []Action  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Failures  []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Apply resolves duplicate groups according to opts. Per-file failures are
// recorded in the outcome and do not stop the run; only an invalid
// configuration, a prompter error, or context cancellation returns an error.
func Apply(ctx context.Context, groups []dupes.Group, opts Options) (*Outcome, error) {
	if opts.Policy == Relocate && opts.TargetDir == "" {
		return nil, errors.New("relocate requires a target directory")
	}

	out := &Outcome{
		RunID:  uuid.NewString(),
		Policy: opts.Policy.String(),
		DryRun: opts.DryRun,
	}

	if opts.Policy == Relocate && !opts.DryRun {
		if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
			return nil, fmt.Errorf("create target directory: %w", err)
		}
	}

	log := logger()
	log.Info("resolution started", "run_id", out.RunID, "policy", out.Policy,
		"groups", len(groups), "dry_run", opts.DryRun)

	taken := make(map[string]bool)
	for _, group := range groups {
		original := group.Original()
		for _, member := range group.Duplicates() {
			select {
			case <-ctx.Done():
				out.Aborted = true
				return out, ctx.Err()
			default:
			}

			if opts.Prompter != nil && !opts.DryRun {
				answer, err := opts.Prompter.Confirm(original.Path, member.Path)
				if err != nil {
					out.Aborted = true
					return out, fmt.Errorf("prompt: %w", err)
				}
				switch answer {
				case Quit:
					out.Aborted = true
					log.Info("resolution aborted by user", "run_id", out.RunID)
					return out, nil
				case No:
					out.Skipped++
					continue
				}
			}

			action, err := resolveOne(member, opts, taken)
			if err != nil {
				log.Warn("resolution failed", "path", member.Path, "error", err)
				out.Failures = append(out.Failures, Failure{Path: member.Path, Reason: err.Error()})
				continue
			}
			out.Processed++
			out.Bytes += action.Size
			out.Actions = append(out.Actions, action)
			if opts.OnAction != nil {
				opts.OnAction(action)
			}
		}
	}

	log.Info("resolution finished", "run_id", out.RunID,
		"processed", out.Processed, "bytes", out.Bytes,
		"skipped", out.Skipped, "failures", len(out.Failures))
	return out, nil
}

// resolveOne acts on a single duplicate member. The destination name is
// chosen immediately before the move, since prior moves in the same run can
// create new collisions; taken carries the destinations already claimed so a
// dry run predicts the same suffixed names a real run would produce.
func resolveOne(member dupes.Member, opts Options, taken map[string]bool) (Action, error) {
	action := Action{Path: member.Path, Size: member.Size}

	switch opts.Policy {
	case Remove:
		if opts.DryRun {
			return action, nil
		}
		if err := os.Remove(member.Path); err != nil {
			return Action{}, fmt.Errorf("remove: %w", err)
		}
	case Relocate:
		dest, err := collisionFreePath(opts.TargetDir, filepath.Base(member.Path), taken)
		if err != nil {
			return Action{}, err
		}
		if !opts.DryRun {
			if err := moveFile(member.Path, dest); err != nil {
				return Action{}, err
			}
		}
		taken[dest] = true
		action.Dest = dest
	default:
		return Action{}, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(opts.Policy))
	}
	return action, nil
}
