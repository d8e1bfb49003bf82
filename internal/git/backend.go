package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"

	"github.com/gitpile/gitpile/internal/errors"
)

// Commit is a resolved, opaque commit identifier (full object hash).
type Commit string

// Short returns the abbreviated form of the commit hash for display.
func (c Commit) Short() string {
	if len(c) > 12 {
		return string(c[:12])
	}
	return string(c)
}

// WorktreeInfo describes one registered worktree of the repository.
type WorktreeInfo struct {
	Path   string
	Head   Commit
	Branch string // full ref name, empty when detached
}

// DiffEntry is one path in a structural diff: a status letter
// (A/M/D/R/C/T) and the new path of the file.
type DiffEntry struct {
	Status byte
	Path   string
}

// Backend is the version-control capability surface the rest of gitpile
// consumes. Read-side operations go through go-git; operations go-git has
// no support for (patch rendering, mailbox application, linked worktrees,
// ref updates) shell out to the git CLI with argument vectors.
type Backend struct {
	root     string
	repo     *gitlib.Repository
	executor CommandExecutor
}

// Open locates the repository containing path and opens it.
func Open(path string) (*Backend, error) {
	return OpenWithExecutor(path, NewExecExecutor())
}

// OpenWithExecutor opens a repository with a custom command executor.
func OpenWithExecutor(path string, executor CommandExecutor) (*Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrap(errors.ErrNotGitRepository, abs)
	}

	b := &Backend{root: abs, repo: repo, executor: executor}
	root, err := b.run(abs, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, errors.Wrap(err, "open repository")
	}
	b.root = strings.TrimSpace(root)
	return b, nil
}

// IsRepository reports whether path is inside a git repository.
func IsRepository(path string) bool {
	_, err := gitlib.PlainOpenWithOptions(path, &gitlib.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// RepoPath returns the repository's top-level working directory.
func (b *Backend) RepoPath() string {
	return b.root
}

// GitDir returns the absolute path of the repository's .git directory.
func (b *Backend) GitDir() (string, error) {
	out, err := b.run(b.root, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the branch currently checked out in the main
// worktree, or an empty string on a detached HEAD.
func (b *Backend) CurrentBranch() (string, error) {
	out, err := b.run(b.root, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ListCommits enumerates the commits in (base, result], oldest first.
// The ordering is the series order and reconstruction depends on it.
func (b *Backend) ListCommits(base, result Commit) ([]Commit, error) {
	out, err := b.run(b.root, "rev-list", "--reverse", fmt.Sprintf("%s..%s", base, result))
	if err != nil {
		return nil, err
	}
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			commits = append(commits, Commit(line))
		}
	}
	return commits, nil
}

// RenderPatch renders a single commit as a patch document into outDir and
// returns the path of the produced file. Signatures, subject numbering and
// index hashes are suppressed so regeneration of an unchanged commit is
// byte-identical.
func (b *Backend) RenderPatch(commit Commit, outDir string) (string, error) {
	out, err := b.run(b.root, "format-patch",
		"--no-signature", "--no-numbered", "--zero-commit",
		"-1", string(commit), "-o", outDir)
	if err != nil {
		return "", err
	}
	path := strings.TrimSpace(out)
	if path == "" {
		return "", errors.Errorf("format-patch produced no file for %s", commit.Short())
	}
	return path, nil
}

// ApplyPatch applies a patch document in worktreeDir via mailbox-style
// application. On failure the in-progress application is aborted so the
// worktree is left in a tearable state.
func (b *Backend) ApplyPatch(worktreeDir, patchPath string) error {
	if _, err := b.run(worktreeDir, "am", patchPath); err != nil {
		_, _ = b.run(worktreeDir, "am", "--abort")
		return err
	}
	return nil
}

// StageAll stages every change (including deletions and untracked files)
// in the given worktree.
func (b *Backend) StageAll(worktreeDir string) error {
	_, err := b.run(worktreeDir, "add", "-A")
	return err
}

// DiffStatus computes the structural diff between the worktree's committed
// tree and its staged state. It returns the parsed entries and the raw
// name-status text.
func (b *Backend) DiffStatus(worktreeDir string) ([]DiffEntry, string, error) {
	out, err := b.run(worktreeDir, "diff", "--cached", "--name-status")
	if err != nil {
		return nil, "", err
	}
	var entries []DiffEntry
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, "", errors.Wrapf(errors.ErrUnexpectedDiffStatus, "malformed diff line %q", line)
		}
		// Renames and copies carry a similarity score (R100) and two
		// paths; the new path is the last field.
		entries = append(entries, DiffEntry{
			Status: fields[0][0],
			Path:   fields[len(fields)-1],
		})
	}
	return entries, out, nil
}

// HeadCommit resolves HEAD of the given worktree directory.
func (b *Backend) HeadCommit(worktreeDir string) (Commit, error) {
	out, err := b.run(worktreeDir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return Commit(strings.TrimSpace(out)), nil
}

// ListWorktrees lists all registered worktrees, including the main one.
func (b *Backend) ListWorktrees() ([]WorktreeInfo, error) {
	out, err := b.run(b.root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	var infos []WorktreeInfo
	var cur *WorktreeInfo
	flush := func() {
		if cur != nil {
			infos = append(infos, *cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD ") && cur != nil:
			cur.Head = Commit(strings.TrimPrefix(line, "HEAD "))
		case strings.HasPrefix(line, "branch ") && cur != nil:
			cur.Branch = strings.TrimPrefix(line, "branch ")
		}
	}
	flush()
	return infos, nil
}

// SetBranch force-updates a local branch ref to the given commit.
func (b *Backend) SetBranch(branch string, commit Commit) error {
	_, err := b.run(b.root, "update-ref", "refs/heads/"+branch, string(commit))
	return err
}

// SetConfig writes a repository-local configuration value.
func (b *Backend) SetConfig(key, value string) error {
	_, err := b.run(b.root, "config", key, value)
	return err
}

// RemoveConfigSection removes an entire configuration section. Removing a
// section that does not exist is not an error.
func (b *Backend) RemoveConfigSection(section string) error {
	_, err := b.run(b.root, "config", "--remove-section", section)
	if err != nil {
		var ge *errors.GitError
		if errors.As(err, &ge) && strings.Contains(ge.Output, "no such section") {
			return nil
		}
		return err
	}
	return nil
}

// run executes git with the given argument vector in dir. Arguments are
// never passed through a shell.
func (b *Backend) run(dir string, args ...string) (string, error) {
	cmdArgs := append([]string{"-C", dir}, args...)
	cmd := exec.Command("git", cmdArgs...)
	return b.executor.ExecuteWithOutput(cmd)
}
