package git

import (
	"strings"

	gogitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gitpile/gitpile/internal/errors"
)

// Identity is the committer identity used for outgoing cover letters.
type Identity struct {
	Name  string
	Email string
}

// Resolve resolves a revision expression (branch, tag, hash, HEAD~n, ...)
// to a commit. Unresolvable references fail with ErrInvalidRange in the
// error chain.
func (b *Backend) Resolve(ref string) (Commit, error) {
	hash, err := b.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidRange, "resolve %q: %v", ref, err)
	}
	return Commit(hash.String()), nil
}

// Subject returns the first line of the commit's message.
func (b *Backend) Subject(commit Commit) (string, error) {
	obj, err := b.repo.CommitObject(plumbing.NewHash(string(commit)))
	if err != nil {
		return "", errors.Wrapf(err, "load commit %s", commit.Short())
	}
	subject, _, _ := strings.Cut(obj.Message, "\n")
	return strings.TrimSpace(subject), nil
}

// UserIdentity returns the configured user name and email, merged across
// config scopes the way git itself resolves them.
func (b *Backend) UserIdentity() (Identity, error) {
	cfg, err := b.repo.ConfigScoped(gogitcfg.SystemScope)
	if err != nil {
		return Identity{}, errors.Wrap(err, "read git configuration")
	}
	return Identity{Name: cfg.User.Name, Email: cfg.User.Email}, nil
}

// ConfigSection returns the key/value pairs of a repository-local
// configuration section. Keys are returned as written (lowercase,
// dash-separated). A missing section yields an empty map.
func (b *Backend) ConfigSection(section string) (map[string]string, error) {
	cfg, err := b.repo.Config()
	if err != nil {
		return nil, errors.Wrap(err, "read repository configuration")
	}
	values := make(map[string]string)
	for _, opt := range cfg.Raw.Section(section).Options {
		values[strings.ToLower(opt.Key)] = opt.Value
	}
	return values, nil
}
