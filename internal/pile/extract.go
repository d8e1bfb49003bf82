package pile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gitpile/gitpile/internal/errors"
	"github.com/gitpile/gitpile/internal/git"
	"github.com/gitpile/gitpile/internal/logger"
)

// CoverFile is the filename of the cover document prepended to an
// extracted patch set.
const CoverFile = "0000-cover-letter.patch"

// Extractor emits only the patch documents that differ from the pile
// branch's recorded state, renumbered for external sharing.
type Extractor struct {
	Backend *git.Backend
	Logger  logger.Logger
}

// ExtractResult lists what was written to the output directory.
type ExtractResult struct {
	CoverPath  string
	PatchPaths []string
}

// Extract regenerates the series for rng inside a workspace detached at
// the pile branch tip, diffs the result against the previously committed
// pile state, and copies the changed patch documents to outDir with a
// disposable sequential numbering plus a cover document.
func (e *Extractor) Extract(rng git.Range, pileBranch, outDir string) (*ExtractResult, error) {
	tip, err := e.Backend.Resolve(pileBranch)
	if err != nil {
		return nil, errors.NewRangeError(pileBranch, pileBranch, err)
	}

	ws, err := e.Backend.NewWorkspace(tip)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Remove() }()

	wsPile := New(ws.Path)
	oldSeries, err := wsPile.LoadSeries()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "read recorded series")
		}
		oldSeries = nil
	}

	gen := &Generator{Backend: e.Backend, Logger: e.Logger}
	genRes, err := gen.Generate(rng, ws.Path)
	if err != nil {
		return nil, err
	}

	if err := e.Backend.StageAll(ws.Path); err != nil {
		return nil, err
	}
	entries, diffText, err := e.Backend.DiffStatus(ws.Path)
	if err != nil {
		return nil, err
	}

	changed, err := selectChanged(entries)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return nil, errors.Wrapf(errors.ErrNoChanges, "%s", rng.Spec())
	}

	orderBySeries(changed, genRes.Names)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}

	result := &ExtractResult{}
	for i, name := range changed {
		outName := fmt.Sprintf("%04d-%s", i+1, name)
		outPath := filepath.Join(outDir, outName)
		if err := copyFile(filepath.Join(ws.Path, name), outPath); err != nil {
			return nil, errors.Wrapf(err, "copy %s", name)
		}
		result.PatchPaths = append(result.PatchPaths, outPath)
	}

	ident, err := e.Backend.UserIdentity()
	if err != nil {
		return nil, err
	}
	cover := ComposeCover(CoverParams{
		Ident:     ident,
		Date:      time.Now(),
		Count:     len(changed),
		Baseline:  genRes.Baseline,
		DiffText:  diffText,
		OldSeries: oldSeries,
		NewSeries: genRes.Names,
	})
	result.CoverPath = filepath.Join(outDir, CoverFile)
	if err := os.WriteFile(result.CoverPath, []byte(cover), 0644); err != nil {
		return nil, errors.Wrap(err, "write cover letter")
	}

	e.Logger.Info("extracted %d changed patches to %s", len(changed), outDir)
	return result, nil
}

// selectChanged filters the structural diff down to the patch documents
// worth emitting. Deletions are implied by the manifest diff and dropped,
// as is anything that is not a patch document. Any status letter outside
// the recognized set is fatal.
func selectChanged(entries []git.DiffEntry) ([]string, error) {
	var changed []string
	for _, entry := range entries {
		if entry.Status == 'D' {
			continue
		}
		if !strings.HasSuffix(entry.Path, ".patch") {
			continue
		}
		switch entry.Status {
		case 'A', 'R', 'C', 'M', 'T':
			changed = append(changed, filepath.Base(entry.Path))
		default:
			return nil, errors.Wrapf(errors.ErrUnexpectedDiffStatus,
				"status %c for %s", entry.Status, entry.Path)
		}
	}
	return changed, nil
}

// orderBySeries sorts changed filenames by their position in the newly
// generated manifest. Filenames the manifest does not list sort first, at
// position zero (new patches not yet present in the old series).
func orderBySeries(changed, series []string) {
	position := make(map[string]int, len(series))
	for i, name := range series {
		position[name] = i + 1
	}
	sort.SliceStable(changed, func(i, j int) bool {
		return position[changed[i]] < position[changed[j]]
	})
}
