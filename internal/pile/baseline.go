package pile

import (
	"os"
	"strings"

	"github.com/gitpile/gitpile/internal/errors"
	"github.com/gitpile/gitpile/internal/git"
)

const baselineKey = "BASELINE="

// ReadBaseline returns the commit the series was last generated against.
// The second return value is false when no baseline has been recorded yet.
func (p *Pile) ReadBaseline() (git.Commit, bool, error) {
	data, err := os.ReadFile(p.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "read baseline record")
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, baselineKey) {
			hash := strings.TrimPrefix(line, baselineKey)
			if hash != "" {
				return git.Commit(hash), true, nil
			}
		}
	}
	return "", false, nil
}

// RecordBaseline persists the commit the series was generated against.
func (p *Pile) RecordBaseline(commit git.Commit) error {
	content := baselineKey + string(commit) + "\n"
	if err := os.WriteFile(p.ConfigPath(), []byte(content), 0644); err != nil {
		return errors.Wrap(err, "write baseline record")
	}
	return nil
}
