package git

import (
	"strings"

	"github.com/gitpile/gitpile/internal/errors"
)

// Range is a validated base..result commit pair. Resolution happens once,
// before any generation proceeds.
type Range struct {
	BaseRef   string
	ResultRef string
	Base      Commit
	Result    Commit
}

// Spec renders the range in A..B form using the original reference names.
func (r Range) Spec() string {
	return r.BaseRef + ".." + r.ResultRef
}

// ResolveRange validates and resolves a range specification. An empty spec
// falls back to defaultBase..defaultResult. A spec without ".." names only
// the base; the result endpoint falls back to defaultResult. Both endpoints
// must resolve to existing commits.
func ResolveRange(b *Backend, spec, defaultBase, defaultResult string) (Range, error) {
	baseRef, resultRef := defaultBase, defaultResult
	if spec != "" {
		if before, after, found := strings.Cut(spec, ".."); found {
			if before != "" {
				baseRef = before
			}
			if after != "" {
				resultRef = after
			}
		} else {
			baseRef = spec
		}
	}

	base, err := b.Resolve(baseRef)
	if err != nil {
		return Range{}, errors.NewRangeError(spec, baseRef, err)
	}
	result, err := b.Resolve(resultRef)
	if err != nil {
		return Range{}, errors.NewRangeError(spec, resultRef, err)
	}

	return Range{
		BaseRef:   baseRef,
		ResultRef: resultRef,
		Base:      base,
		Result:    result,
	}, nil
}
