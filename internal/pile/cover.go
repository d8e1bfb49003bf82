package pile

import (
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gitpile/gitpile/internal/git"
)

// CoverParams carries everything the cover document summarizes.
type CoverParams struct {
	Ident    git.Identity
	Date     time.Time
	Count    int
	Baseline git.Commit

	// DiffText is the raw structural diff between the recorded and the
	// regenerated pile state; it becomes the changelog body.
	DiffText string

	// OldSeries and NewSeries are the manifests before and after
	// regeneration, for the series diff section.
	OldSeries []string
	NewSeries []string
}

// ComposeCover renders the textual summary header for an extracted patch
// set. The From/Date/Subject header set matches what mail-formatting
// tooling downstream expects; subject and blurb are left as placeholders
// for the sender to fill in.
func ComposeCover(p CoverParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s <%s>\n", p.Ident.Name, p.Ident.Email)
	fmt.Fprintf(&b, "Date: %s\n", p.Date.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Subject: [PATCH 0/%d] *** SUBJECT HERE ***\n", p.Count)
	b.WriteString("\n*** BLURB HERE ***\n\n---\n")
	fmt.Fprintf(&b, "Changes below are against the current pile state with\nBASELINE=%s\n\n", p.Baseline)

	b.WriteString(strings.TrimRight(p.DiffText, "\n"))
	b.WriteString("\n")

	if seriesDiff := seriesDiffText(p.OldSeries, p.NewSeries); seriesDiff != "" {
		b.WriteString("\nseries changes:\n\n")
		b.WriteString(seriesDiff)
	}

	return b.String()
}

// seriesDiffText renders a unified diff of the series manifest entries.
func seriesDiffText(old, new []string) string {
	diff := difflib.UnifiedDiff{
		A:        terminated(old),
		B:        terminated(new),
		FromFile: "a/" + SeriesFile,
		ToFile:   "b/" + SeriesFile,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

func terminated(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line + "\n"
	}
	return out
}
