package config

import (
	"github.com/gitpile/gitpile/internal/errors"
)

// Configuration keys recognized in the repository's "pile" section.
// The schema is fixed: values under pile.* that are not listed here are
// ignored rather than attached dynamically.
const (
	KeyDir            = "dir"
	KeyBranch         = "branch"
	KeyRemoteBranch   = "remote-branch"
	KeyTrackingBranch = "tracking-branch"
	KeyResultBranch   = "result-branch"
)

// Defaults applied by `gitpile init` when flags are not given.
const (
	DefaultDir            = "pile"
	DefaultBranch         = "pile"
	DefaultTrackingBranch = "master"
)

// Config is the pile configuration for one repository, assembled once from
// the persisted pile.* key-value store and passed explicitly into every
// component that needs it.
type Config struct {
	// Dir is the directory holding the series manifest, baseline record
	// and patch documents, relative to the repository root.
	Dir string

	// Branch is the branch storing the pile's tracked history.
	Branch string

	// RemoteBranch is where the pile branch is pushed. Optional.
	RemoteBranch string

	// TrackingBranch is the base branch patches apply on top of.
	TrackingBranch string

	// ResultBranch is the branch genbranch reconstructs. Optional; when
	// empty the currently checked-out branch is used.
	ResultBranch string
}

// SectionReader provides the persisted key-value pairs of a configuration
// section. *git.Backend satisfies it.
type SectionReader interface {
	ConfigSection(section string) (map[string]string, error)
}

// Load assembles the pile configuration from the repository's pile.*
// section and validates its completeness. An uninitialized or incomplete
// pile fails with ErrNotInitialized before any command does work.
func Load(r SectionReader) (*Config, error) {
	values, err := r.ConfigSection("pile")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Dir:            values[KeyDir],
		Branch:         values[KeyBranch],
		RemoteBranch:   values[KeyRemoteBranch],
		TrackingBranch: values[KeyTrackingBranch],
		ResultBranch:   values[KeyResultBranch],
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required field is present. Validation happens
// at construction, not per use.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{KeyDir, c.Dir},
		{KeyBranch, c.Branch},
		{KeyTrackingBranch, c.TrackingBranch},
	}
	for _, f := range required {
		if f.value == "" {
			return errors.NewConfigError("pile."+f.key, nil,
				errors.Wrap(errors.ErrNotInitialized, "missing value, run `gitpile init` first"))
		}
	}
	return nil
}
