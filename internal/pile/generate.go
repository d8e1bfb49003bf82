package pile

import (
	"os"
	"path/filepath"

	"github.com/gitpile/gitpile/internal/errors"
	"github.com/gitpile/gitpile/internal/git"
	"github.com/gitpile/gitpile/internal/logger"
)

// Generator converts a resolved commit range into a fresh pile content
// set: patch documents, series manifest and baseline record.
type Generator struct {
	Backend *git.Backend
	Logger  logger.Logger
}

// GenerateResult describes a successful generation.
type GenerateResult struct {
	// Names are the patch filenames in series order.
	Names []string

	// Baseline is the resolved base commit the series was generated
	// against.
	Baseline git.Commit
}

// Generate produces the series for rng into the destination directory.
//
// Everything is rendered into a private staging area first; the
// destination is replaced only after every document rendered successfully,
// so a failure anywhere before the final swap leaves it untouched. The
// swap itself copies the new patch files in, renames the new manifest into
// place, deletes stale patch files and records the baseline, in that
// order. It is not crash-atomic as a whole, but the manifest never names a
// file that is not already in final position.
func (g *Generator) Generate(rng git.Range, dest string) (*GenerateResult, error) {
	commits, err := g.Backend.ListCommits(rng.Base, rng.Result)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyRange, "%s", rng.Spec())
	}
	g.Logger.Info("generating %d patches for %s", len(commits), rng.Spec())

	staging, err := os.MkdirTemp("", "gitpile-staging-")
	if err != nil {
		return nil, errors.Wrap(err, "create staging area")
	}
	defer func() { _ = os.RemoveAll(staging) }()

	// Render one commit at a time into a scratch subdirectory, then move
	// the document to its stable name in the staging root. Rendering
	// commits separately keeps same-subject commits from overwriting each
	// other before collision resolution sees them.
	renderDir := filepath.Join(staging, "render")
	if err := os.MkdirAll(renderDir, 0755); err != nil {
		return nil, errors.Wrap(err, "create staging area")
	}

	used := make(map[string]bool, len(commits))
	names := make([]string, 0, len(commits))
	for _, commit := range commits {
		rendered, err := g.Backend.RenderPatch(commit, renderDir)
		if err != nil {
			return nil, err
		}
		name, err := uniqueName(StableName(filepath.Base(rendered)), used, len(commits))
		if err != nil {
			return nil, err
		}
		if err := os.Rename(rendered, filepath.Join(staging, name)); err != nil {
			return nil, errors.Wrap(err, "stage patch")
		}
		used[name] = true
		names = append(names, name)
		if subject, err := g.Backend.Subject(commit); err == nil {
			g.Logger.Info("staged %s for %s %q", name, commit.Short(), subject)
		}
	}

	if err := g.replace(dest, staging, names, used); err != nil {
		return nil, err
	}

	if err := New(dest).RecordBaseline(rng.Base); err != nil {
		return nil, err
	}

	return &GenerateResult{Names: names, Baseline: rng.Base}, nil
}

// replace swaps the staged content set into the destination.
func (g *Generator) replace(dest, staging string, names []string, used map[string]bool) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return errors.Wrap(err, "create pile directory")
	}
	p := New(dest)

	stale, err := p.PatchFiles()
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := copyFile(filepath.Join(staging, name), p.PatchPath(name)); err != nil {
			return errors.Wrapf(err, "install %s", name)
		}
	}

	if err := p.WriteSeries(names); err != nil {
		return err
	}

	// Stale documents go last: at this point the renamed manifest no
	// longer references them.
	for _, name := range stale {
		if used[name] {
			continue
		}
		if err := os.Remove(p.PatchPath(name)); err != nil {
			return errors.Wrapf(err, "remove stale patch %s", name)
		}
		g.Logger.Info("removed stale patch %s", name)
	}

	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
