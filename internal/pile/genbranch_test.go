package pile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gitpile/gitpile/internal/errors"
)

func TestReconstructRoundTrip(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	commitFile(t, repo, "fix.txt", "fix\n", "Fix bug")
	commitFile(t, repo, "feat.txt", "feat\n", "Add feature")
	b := openTestBackend(t, repo)
	lg, _ := testLogger()

	dest := filepath.Join(t.TempDir(), "pile")
	gen := &Generator{Backend: b, Logger: lg}
	if _, err := gen.Generate(resolveTestRange(t, b, "base", "HEAD"), dest); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	rec := &Reconstructor{Backend: b, Logger: lg}
	outcome, err := rec.Reconstruct(New(dest), "base", "result")
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if outcome.Refused {
		t.Fatalf("unexpected refusal at %s", outcome.RefusedPath)
	}

	resolved, err := b.Resolve("result")
	if err != nil {
		t.Fatalf("Resolve(result): %v", err)
	}
	if resolved != outcome.Head {
		t.Errorf("result = %s, outcome.Head = %s", resolved, outcome.Head)
	}

	// Replaying the generated series reproduces the original tree exactly.
	masterTree := gitRun(t, repo, "rev-parse", "master^{tree}")
	resultTree := gitRun(t, repo, "rev-parse", "result^{tree}")
	if masterTree != resultTree {
		t.Errorf("result tree %s != master tree %s", resultTree, masterTree)
	}

	gitDir := gitRun(t, repo, "rev-parse", "--absolute-git-dir")
	pointer, err := os.ReadFile(filepath.Join(gitDir, ResultPointerFile))
	if err != nil {
		t.Fatalf("read %s: %v", ResultPointerFile, err)
	}
	if string(pointer) != string(outcome.Head)+"\n" {
		t.Errorf("%s = %q, want %q", ResultPointerFile, pointer, string(outcome.Head)+"\n")
	}
}

func TestReconstructMissingPatch(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	commitFile(t, repo, "fix.txt", "fix\n", "Fix bug")
	b := openTestBackend(t, repo)
	lg, _ := testLogger()

	dest := filepath.Join(t.TempDir(), "pile")
	gen := &Generator{Backend: b, Logger: lg}
	if _, err := gen.Generate(resolveTestRange(t, b, "base", "HEAD"), dest); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := os.Remove(filepath.Join(dest, "Fix-bug.patch")); err != nil {
		t.Fatal(err)
	}

	rec := &Reconstructor{Backend: b, Logger: lg}
	_, err := rec.Reconstruct(New(dest), "base", "result")
	if err == nil {
		t.Fatal("Reconstruct succeeded with a missing patch document")
	}
	if !errors.Is(err, errors.ErrMissingPatch) {
		t.Errorf("error %v does not match ErrMissingPatch", err)
	}
	if _, err := b.Resolve("result"); err == nil {
		t.Error("result branch created despite validation failure")
	}
}

func TestReconstructBaselineDrift(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	commitFile(t, repo, "feat.txt", "feat\n", "Add feature")
	b := openTestBackend(t, repo)
	lg, out := testLogger()

	dest := filepath.Join(t.TempDir(), "pile")
	gen := &Generator{Backend: b, Logger: lg}
	if _, err := gen.Generate(resolveTestRange(t, b, "base", "HEAD"), dest); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Advance the tracking branch past the recorded baseline with an
	// unrelated change, so the patch still applies.
	wt := filepath.Join(t.TempDir(), "base-wt")
	gitRun(t, repo, "worktree", "add", wt, "base")
	commitFile(t, wt, "unrelated.txt", "unrelated\n", "Unrelated change")
	gitRun(t, repo, "worktree", "remove", "--force", wt)

	rec := &Reconstructor{Backend: b, Logger: lg}
	outcome, err := rec.Reconstruct(New(dest), "base", "result")
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	if !strings.Contains(out.String(), "warning: baseline") {
		t.Errorf("drift warning not printed; output:\n%s", out.String())
	}

	// The rebuilt branch sits on the moved tip and carries the patch.
	gitRun(t, repo, "cat-file", "-e", string(outcome.Head))
	for _, file := range []string{"unrelated.txt", "feat.txt"} {
		if out := gitRun(t, repo, "ls-tree", "--name-only", "result", file); out != file {
			t.Errorf("result branch missing %s", file)
		}
	}
}

func TestReconstructRefusedWhenBranchCheckedOut(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	commitFile(t, repo, "fix.txt", "fix\n", "Fix bug")
	b := openTestBackend(t, repo)
	lg, _ := testLogger()

	dest := filepath.Join(t.TempDir(), "pile")
	gen := &Generator{Backend: b, Logger: lg}
	if _, err := gen.Generate(resolveTestRange(t, b, "base", "HEAD"), dest); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	gitRun(t, repo, "branch", "result", "base")
	before, err := b.Resolve("result")
	if err != nil {
		t.Fatal(err)
	}
	busy := filepath.Join(t.TempDir(), "busy")
	gitRun(t, repo, "worktree", "add", busy, "result")
	defer gitRun(t, repo, "worktree", "remove", "--force", busy)

	rec := &Reconstructor{Backend: b, Logger: lg}
	outcome, err := rec.Reconstruct(New(dest), "base", "result")
	if err == nil {
		t.Fatal("Reconstruct moved a checked-out branch")
	}
	if !errors.Is(err, errors.ErrBranchInUse) {
		t.Errorf("error %v does not match ErrBranchInUse", err)
	}
	if outcome == nil || !outcome.Refused {
		t.Fatalf("outcome = %+v, want refusal", outcome)
	}
	if outcome.RefusedPath == "" {
		t.Error("RefusedPath not reported")
	}

	// The ref is unmoved, but the computed head survives in the pointer.
	after, err := b.Resolve("result")
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("result moved from %s to %s despite refusal", before, after)
	}
	gitDir := gitRun(t, repo, "rev-parse", "--absolute-git-dir")
	pointer, err := os.ReadFile(filepath.Join(gitDir, ResultPointerFile))
	if err != nil {
		t.Fatalf("read %s: %v", ResultPointerFile, err)
	}
	if string(pointer) != string(outcome.Head)+"\n" {
		t.Errorf("%s = %q, want %q", ResultPointerFile, pointer, string(outcome.Head)+"\n")
	}
}

func TestReconstructApplyFailure(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	commitFile(t, repo, "shared.txt", "topic\n", "Add shared")
	b := openTestBackend(t, repo)
	lg, _ := testLogger()

	dest := filepath.Join(t.TempDir(), "pile")
	gen := &Generator{Backend: b, Logger: lg}
	if _, err := gen.Generate(resolveTestRange(t, b, "base", "HEAD"), dest); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// The tracking branch grows a conflicting version of the same file.
	wt := filepath.Join(t.TempDir(), "base-wt")
	gitRun(t, repo, "worktree", "add", wt, "base")
	commitFile(t, wt, "shared.txt", "diverged\n", "Conflicting change")
	gitRun(t, repo, "worktree", "remove", "--force", wt)

	rec := &Reconstructor{Backend: b, Logger: lg}
	_, err := rec.Reconstruct(New(dest), "base", "result")
	if err == nil {
		t.Fatal("Reconstruct succeeded despite a conflicting patch")
	}
	if !errors.Is(err, errors.ErrPatchApply) {
		t.Errorf("error %v does not match ErrPatchApply", err)
	}

	var ae *errors.ApplyError
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not an ApplyError", err)
	}
	if ae.Patch != "Add-shared.patch" || ae.Position != 1 {
		t.Errorf("ApplyError = %s at %d, want Add-shared.patch at 1", ae.Patch, ae.Position)
	}
	if _, err := b.Resolve("result"); err == nil {
		t.Error("result branch created despite apply failure")
	}
}
