package pile

import (
	"os"
	"path/filepath"

	"github.com/gitpile/gitpile/internal/errors"
	"github.com/gitpile/gitpile/internal/git"
	"github.com/gitpile/gitpile/internal/logger"
)

// ResultPointerFile is the recoverable pointer written under the git
// directory after a successful reconstruction. It survives a refused
// branch update, so the computed head is never lost.
const ResultPointerFile = "PILE_RESULT"

// Reconstructor rebuilds a result branch by replaying the persisted
// series over the tracked baseline in an ephemeral workspace.
type Reconstructor struct {
	Backend *git.Backend
	Logger  logger.Logger
}

// ReconstructOutcome reports where a reconstruction ended up.
type ReconstructOutcome struct {
	// Head is the reconstructed tip, also recorded in ResultPointerFile.
	Head git.Commit

	// Branch is the target branch name.
	Branch string

	// Refused is set when the branch ref was left unmoved because the
	// branch is checked out elsewhere; RefusedPath says where.
	Refused     bool
	RefusedPath string
}

// Reconstruct replays the series onto the current tip of trackingBranch
// and moves resultBranch there.
//
// The busy-branch check before the ref update is advisory: a concurrent
// external checkout between the check and update-ref is an accepted race,
// not a guarded critical section.
func (r *Reconstructor) Reconstruct(p *Pile, trackingBranch, resultBranch string) (*ReconstructOutcome, error) {
	baseline, ok, err := p.ReadBaseline()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(errors.ErrNotInitialized, "pile has no baseline record")
	}

	baseTip, err := r.Backend.Resolve(trackingBranch)
	if err != nil {
		return nil, errors.NewRangeError(trackingBranch, trackingBranch, err)
	}
	if baseTip != baseline {
		// History moved since the series was generated. Not fatal, but
		// the patches may no longer apply cleanly.
		r.Logger.WarningToUser("baseline %s differs from current %s tip %s; patches may not apply",
			baseline.Short(), trackingBranch, baseTip.Short())
	}

	names, err := p.LoadSeries()
	if err != nil {
		return nil, errors.Wrap(err, "read series manifest")
	}
	if err := p.ValidateSeries(names); err != nil {
		return nil, err
	}

	ws, err := r.Backend.NewWorkspace(baseTip)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Remove() }()

	for i, name := range names {
		abs, err := filepath.Abs(p.PatchPath(name))
		if err != nil {
			return nil, err
		}
		r.Logger.Info("applying %d/%d %s", i+1, len(names), name)
		if err := r.Backend.ApplyPatch(ws.Path, abs); err != nil {
			// No rollback: the partially-applied state lives only in the
			// workspace, which the deferred Remove discards.
			return nil, errors.NewApplyError(name, i+1, err, "")
		}
	}

	head, err := ws.Head()
	if err != nil {
		return nil, err
	}
	if err := r.recordResultPointer(head); err != nil {
		return nil, err
	}

	outcome := &ReconstructOutcome{Head: head, Branch: resultBranch}

	worktrees, err := r.Backend.ListWorktrees()
	if err != nil {
		return nil, err
	}
	for _, wt := range worktrees {
		if wt.Path == ws.Path {
			continue
		}
		if wt.Branch == "refs/heads/"+resultBranch {
			outcome.Refused = true
			outcome.RefusedPath = wt.Path
			return outcome, errors.Wrapf(errors.ErrBranchInUse,
				"branch %q is checked out at %s; result head %s kept in %s",
				resultBranch, wt.Path, head.Short(), ResultPointerFile)
		}
	}

	if err := r.Backend.SetBranch(resultBranch, head); err != nil {
		return nil, err
	}
	return outcome, nil
}

// recordResultPointer persists the reconstructed head outside any branch
// ref, before the branch update is attempted.
func (r *Reconstructor) recordResultPointer(head git.Commit) error {
	gitDir, err := r.Backend.GitDir()
	if err != nil {
		return err
	}
	path := filepath.Join(gitDir, ResultPointerFile)
	if err := os.WriteFile(path, []byte(string(head)+"\n"), 0644); err != nil {
		return errors.Wrap(err, "record result pointer")
	}
	r.Logger.Info("recorded result head %s in %s", head.Short(), path)
	return nil
}
