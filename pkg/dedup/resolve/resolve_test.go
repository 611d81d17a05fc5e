package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/dupes"
)

// writeFile creates path with content and a mod time offset so group
// ordering is deterministic.
func writeFile(t *testing.T, path, content string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// groupOf builds a duplicate group from existing files, oldest first.
func groupOf(t *testing.T, paths ...string) dupes.Group {
	t.Helper()
	group := dupes.Group{Algorithm: digest.SHA256, Digest: "feedface"}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		group.Size = info.Size()
		group.Members = append(group.Members, dupes.Member{
			Path:    p,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return group
}

func TestApplyRemove(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "hello", 2*time.Hour)
	writeFile(t, b, "hello", time.Hour)

	out, err := Apply(context.Background(), []dupes.Group{groupOf(t, a, b)}, Options{Policy: Remove})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if out.Processed != 1 {
		t.Errorf("Processed = %d, want 1", out.Processed)
	}
	if out.Bytes != 5 {
		t.Errorf("Bytes = %d, want 5", out.Bytes)
	}
	if out.RunID == "" {
		t.Error("expected non-empty run ID")
	}
	if _, err := os.Stat(a); err != nil {
		t.Errorf("original removed: %v", err)
	}
	if _, err := os.Stat(b); !os.IsNotExist(err) {
		t.Errorf("duplicate still present: %v", err)
	}
}

func TestApplyRemoveDryRun(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "hello", 2*time.Hour)
	writeFile(t, b, "hello", time.Hour)

	out, err := Apply(context.Background(), []dupes.Group{groupOf(t, a, b)},
		Options{Policy: Remove, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if out.Processed != 1 || out.Bytes != 5 {
		t.Errorf("dry run accounting = (%d, %d), want (1, 5)", out.Processed, out.Bytes)
	}
	for _, p := range []string{a, b} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("dry run touched %s: %v", p, err)
		}
	}
}

// hashExisting digests every path that still exists, skipping removed ones.
func hashExisting(t *testing.T, paths ...string) []*digest.Result {
	t.Helper()
	var results []*digest.Result
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		res, err := digest.File(p, []digest.Algorithm{digest.SHA256}, 0)
		if err != nil {
			t.Fatalf("hash %s: %v", p, err)
		}
		results = append(results, res)
	}
	return results
}

func TestApplyRemoveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.txt")
	writeFile(t, a, "hello", 2*time.Hour)
	writeFile(t, b, "hello", time.Hour)
	writeFile(t, c, "unique", time.Hour)

	groups := dupes.Find(hashExisting(t, a, b, c), digest.SHA256)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].Original().Path != a {
		t.Fatalf("original = %s, want %s", groups[0].Original().Path, a)
	}

	if _, err := Apply(context.Background(), groups, Options{Policy: Remove}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// A second pass over the post-resolution tree finds nothing to do.
	again := dupes.Find(hashExisting(t, a, b, c), digest.SHA256)
	if len(again) != 0 {
		t.Fatalf("second pass groups = %d, want 0", len(again))
	}

	out, err := Apply(context.Background(), again, Options{Policy: Remove})
	if err != nil {
		t.Fatalf("Apply on empty groups: %v", err)
	}
	if out.Processed != 0 || len(out.Failures) != 0 {
		t.Errorf("second run acted: processed=%d failures=%d", out.Processed, len(out.Failures))
	}
	if _, err := os.Stat(a); err != nil {
		t.Errorf("original missing after re-run: %v", err)
	}
}

func TestApplyRelocate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "quarantine")
	a := filepath.Join(dir, "x", "dup.txt")
	b := filepath.Join(dir, "y", "dup.txt")
	c := filepath.Join(dir, "z", "dup.txt")
	writeFile(t, a, "same", 3*time.Hour)
	writeFile(t, b, "same", 2*time.Hour)
	writeFile(t, c, "same", time.Hour)

	out, err := Apply(context.Background(), []dupes.Group{groupOf(t, a, b, c)},
		Options{Policy: Relocate, TargetDir: target})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if out.Processed != 2 {
		t.Fatalf("Processed = %d, want 2", out.Processed)
	}
	if _, err := os.Stat(a); err != nil {
		t.Errorf("original moved: %v", err)
	}

	// Both duplicates share a base name, so the second lands on a suffix.
	want := []string{
		filepath.Join(target, "dup.txt"),
		filepath.Join(target, "dup_1.txt"),
	}
	for i, action := range out.Actions {
		if action.Dest != want[i] {
			t.Errorf("action %d dest = %s, want %s", i, action.Dest, want[i])
		}
		if _, err := os.Stat(action.Dest); err != nil {
			t.Errorf("destination missing: %v", err)
		}
	}
}

func TestApplyRelocateDryRunPredictsSuffixes(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "quarantine")
	a := filepath.Join(dir, "x", "dup.txt")
	b := filepath.Join(dir, "y", "dup.txt")
	c := filepath.Join(dir, "z", "dup.txt")
	writeFile(t, a, "same", 3*time.Hour)
	writeFile(t, b, "same", 2*time.Hour)
	writeFile(t, c, "same", time.Hour)

	out, err := Apply(context.Background(), []dupes.Group{groupOf(t, a, b, c)},
		Options{Policy: Relocate, TargetDir: target, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// The preview claims the same suffixed names a real run would use.
	want := []string{
		filepath.Join(target, "dup.txt"),
		filepath.Join(target, "dup_1.txt"),
	}
	if len(out.Actions) != len(want) {
		t.Fatalf("Actions = %d, want %d", len(out.Actions), len(want))
	}
	for i, action := range out.Actions {
		if action.Dest != want[i] {
			t.Errorf("action %d dest = %s, want %s", i, action.Dest, want[i])
		}
	}

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("dry run created the target directory")
	}
	for _, p := range []string{a, b, c} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("dry run touched %s: %v", p, err)
		}
	}
}

func TestApplyRelocateRequiresTarget(t *testing.T) {
	_, err := Apply(context.Background(), nil, Options{Policy: Relocate})
	if err == nil {
		t.Fatal("expected error for relocate without target directory")
	}
}

func TestApplyContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.txt")
	writeFile(t, a, "hello", 3*time.Hour)
	writeFile(t, b, "hello", 2*time.Hour)
	writeFile(t, c, "hello", time.Hour)
	group := groupOf(t, a, b, c)

	// Remove b out from under the run so it fails.
	if err := os.Remove(b); err != nil {
		t.Fatalf("remove: %v", err)
	}

	out, err := Apply(context.Background(), []dupes.Group{group}, Options{Policy: Remove})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(out.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(out.Failures))
	}
	if out.Failures[0].Path != b {
		t.Errorf("failure path = %s, want %s", out.Failures[0].Path, b)
	}
	if out.Processed != 1 {
		t.Errorf("Processed = %d, want 1", out.Processed)
	}
	if _, err := os.Stat(c); !os.IsNotExist(err) {
		t.Error("run stopped before later duplicates")
	}
}

// scriptedPrompter replays canned answers.
type scriptedPrompter struct {
	answers []Answer
	asked   []string
}

func (p *scriptedPrompter) Confirm(_, duplicate string) (Answer, error) {
	p.asked = append(p.asked, duplicate)
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func TestApplyInteractive(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.txt")
	writeFile(t, a, "hello", 3*time.Hour)
	writeFile(t, b, "hello", 2*time.Hour)
	writeFile(t, c, "hello", time.Hour)

	prompter := &scriptedPrompter{answers: []Answer{No, Yes}}
	out, err := Apply(context.Background(), []dupes.Group{groupOf(t, a, b, c)},
		Options{Policy: Remove, Prompter: prompter})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if out.Skipped != 1 || out.Processed != 1 {
		t.Errorf("skipped/processed = %d/%d, want 1/1", out.Skipped, out.Processed)
	}
	if _, err := os.Stat(b); err != nil {
		t.Errorf("declined file touched: %v", err)
	}
	if _, err := os.Stat(c); !os.IsNotExist(err) {
		t.Error("accepted file still present")
	}
	if len(prompter.asked) != 2 {
		t.Errorf("prompts = %d, want 2", len(prompter.asked))
	}
}

func TestApplyInteractiveQuit(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.txt")
	writeFile(t, a, "hello", 3*time.Hour)
	writeFile(t, b, "hello", 2*time.Hour)
	writeFile(t, c, "hello", time.Hour)

	prompter := &scriptedPrompter{answers: []Answer{Quit}}
	out, err := Apply(context.Background(), []dupes.Group{groupOf(t, a, b, c)},
		Options{Policy: Remove, Prompter: prompter})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !out.Aborted {
		t.Error("expected aborted outcome")
	}
	if out.Processed != 0 {
		t.Errorf("Processed = %d, want 0", out.Processed)
	}
	for _, p := range []string{a, b, c} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("quit run touched %s: %v", p, err)
		}
	}
}

func TestApplyCancelled(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "hello", 2*time.Hour)
	writeFile(t, b, "hello", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Apply(ctx, []dupes.Group{groupOf(t, a, b)}, Options{Policy: Remove})
	if err == nil {
		t.Fatal("expected context error")
	}
	if !out.Aborted {
		t.Error("expected aborted outcome")
	}
	if _, err := os.Stat(b); err != nil {
		t.Errorf("cancelled run touched %s: %v", b, err)
	}
}

func TestCollisionFreePath(t *testing.T) {
	dir := t.TempDir()
	taken := make(map[string]bool)

	first, err := collisionFreePath(dir, "file.txt", taken)
	if err != nil {
		t.Fatalf("collisionFreePath: %v", err)
	}
	if first != filepath.Join(dir, "file.txt") {
		t.Errorf("first = %s", first)
	}

	writeFile(t, filepath.Join(dir, "file.txt"), "x", 0)
	writeFile(t, filepath.Join(dir, "file_1.txt"), "x", 0)

	next, err := collisionFreePath(dir, "file.txt", taken)
	if err != nil {
		t.Fatalf("collisionFreePath: %v", err)
	}
	if next != filepath.Join(dir, "file_2.txt") {
		t.Errorf("next = %s, want file_2.txt", next)
	}

	// A name claimed earlier in the run collides even before it exists.
	taken[filepath.Join(dir, "file_2.txt")] = true
	after, err := collisionFreePath(dir, "file.txt", taken)
	if err != nil {
		t.Fatalf("collisionFreePath: %v", err)
	}
	if after != filepath.Join(dir, "file_3.txt") {
		t.Errorf("after = %s, want file_3.txt", after)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		want    Policy
		wantErr bool
	}{
		{name: "remove", want: Remove},
		{name: "relocate", want: Relocate},
		{name: "shred", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePolicy(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePolicy(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
