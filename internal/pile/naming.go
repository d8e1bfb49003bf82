package pile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gitpile/gitpile/internal/errors"
)

// format-patch names files NNNN-<subject slug>.patch; the numeric prefix
// changes whenever patches are reordered or inserted, so it is stripped to
// keep filenames stable across regeneration.
var numericPrefix = regexp.MustCompile(`^[0-9]+-`)

// StableName derives the regenerate-safe filename from a rendered patch
// filename.
func StableName(rendered string) string {
	return numericPrefix.ReplaceAllString(rendered, "")
}

// uniqueName resolves filename collisions between distinct commits whose
// subjects reduce to the same default filename. Colliding names get a
// deterministic increasing numeric suffix before the extension:
// fix.patch, fix-2.patch, fix-3.patch, ... The number of retries is
// bounded by maxRetries (the commit count of the range); exceeding it is
// the pathological ErrPatchNamingExhausted case.
func uniqueName(name string, used map[string]bool, maxRetries int) (string, error) {
	if !used[name] {
		return name, nil
	}

	stem := strings.TrimSuffix(name, ".patch")
	for i := 2; i <= maxRetries+1; i++ {
		candidate := fmt.Sprintf("%s-%d.patch", stem, i)
		if !used[candidate] {
			return candidate, nil
		}
	}
	return "", errors.Wrapf(errors.ErrPatchNamingExhausted, "%s", name)
}
