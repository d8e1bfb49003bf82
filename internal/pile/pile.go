package pile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitpile/gitpile/internal/errors"
)

const (
	// SeriesFile is the manifest listing patch filenames in application order.
	SeriesFile = "series"

	// ConfigFile is the co-located record holding the baseline commit.
	ConfigFile = "config"
)

const seriesHeader = "# Patch series managed by gitpile; one filename per line, applied top to bottom."

// Pile is the on-disk patch series: a series manifest, a baseline record
// and the patch documents themselves, all in one directory. Its contents
// are owned by the last successful generation; nothing mutates it
// partially.
type Pile struct {
	Dir string
}

// New returns a Pile rooted at dir. The directory is not required to exist
// yet; generation creates it.
func New(dir string) *Pile {
	return &Pile{Dir: dir}
}

// SeriesPath returns the path of the series manifest.
func (p *Pile) SeriesPath() string {
	return filepath.Join(p.Dir, SeriesFile)
}

// ConfigPath returns the path of the baseline record file.
func (p *Pile) ConfigPath() string {
	return filepath.Join(p.Dir, ConfigFile)
}

// PatchPath returns the path of a named patch document.
func (p *Pile) PatchPath(name string) string {
	return filepath.Join(p.Dir, name)
}

// Exists reports whether the pile directory contains a series manifest.
func (p *Pile) Exists() bool {
	info, err := os.Stat(p.SeriesPath())
	return err == nil && info.Mode().IsRegular()
}

// LoadSeries reads the manifest and returns the patch filenames in
// application order. Comment lines (#-prefixed) and blank lines are
// ignored. Order is semantically meaningful.
func (p *Pile) LoadSeries() ([]string, error) {
	f, err := os.Open(p.SeriesPath())
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read series manifest")
	}
	return names, nil
}

// WriteSeries replaces the manifest with the given filenames, in order.
// The new manifest is written to a temporary name and renamed into place
// so a crash never leaves a half-written series.
func (p *Pile) WriteSeries(names []string) error {
	var b strings.Builder
	b.WriteString(seriesHeader)
	b.WriteByte('\n')
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('\n')
	}

	tmp := p.SeriesPath() + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return errors.Wrap(err, "write series manifest")
	}
	if err := os.Rename(tmp, p.SeriesPath()); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "replace series manifest")
	}
	return nil
}

// PatchFiles lists the patch documents currently on disk in the pile
// directory, by filename.
func (p *Pile) PatchFiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.Dir, "*.patch"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names, nil
}

// ValidateSeries checks that every manifest entry exists on disk as a
// regular readable file, failing with ErrMissingPatch on the first entry
// that does not.
func (p *Pile) ValidateSeries(names []string) error {
	for _, name := range names {
		info, err := os.Stat(p.PatchPath(name))
		if err != nil || !info.Mode().IsRegular() {
			return errors.Wrapf(errors.ErrMissingPatch, "%s", name)
		}
	}
	return nil
}

// String implements fmt.Stringer for log output.
func (p *Pile) String() string {
	return fmt.Sprintf("pile(%s)", p.Dir)
}
