package git

import (
	"os"

	"github.com/gitpile/gitpile/internal/errors"
)

// Workspace is an ephemeral, detached checkout of a single commit,
// registered as a linked worktree. It is independent of the user's own
// checkout and must be removed when the operation that created it ends,
// whether it succeeded or failed. Callers are expected to
//
//	ws, err := backend.NewWorkspace(commit)
//	if err != nil { ... }
//	defer ws.Remove()
//
// so teardown runs on every exit path.
type Workspace struct {
	Path string

	backend *Backend
	removed bool
}

// NewWorkspace creates a temporary directory and checks out the given
// commit into it, detached. The directory is cleaned up again if the
// worktree registration fails.
func (b *Backend) NewWorkspace(commit Commit) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "gitpile-worktree-")
	if err != nil {
		return nil, errors.Wrap(err, "create workspace directory")
	}

	if _, err := b.run(b.root, "worktree", "add", "--detach", dir, string(commit)); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrapf(err, "check out %s into workspace", commit.Short())
	}

	return &Workspace{Path: dir, backend: b}, nil
}

// Head resolves the workspace's current HEAD commit.
func (w *Workspace) Head() (Commit, error) {
	return w.backend.HeadCommit(w.Path)
}

// Remove unregisters the worktree and deletes its directory. It is safe to
// call more than once; only the first call does work. Removal is forced:
// a workspace is scratch state and anything left in it is discarded.
func (w *Workspace) Remove() error {
	if w.removed {
		return nil
	}
	w.removed = true

	_, err := w.backend.run(w.backend.root, "worktree", "remove", "--force", w.Path)
	if err != nil {
		// The registration may already be gone (e.g. the directory was
		// deleted externally). Fall back to removing what is left and
		// pruning stale registrations.
		_ = os.RemoveAll(w.Path)
		_, pruneErr := w.backend.run(w.backend.root, "worktree", "prune")
		if pruneErr != nil {
			return errors.Wrap(err, "remove workspace")
		}
	}
	return nil
}
