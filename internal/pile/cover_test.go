package pile

import (
	"strings"
	"testing"
	"time"

	"github.com/gitpile/gitpile/internal/git"
)

func TestComposeCover(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	cover := ComposeCover(CoverParams{
		Ident:     git.Identity{Name: "Test User", Email: "test@example.com"},
		Date:      date,
		Count:     2,
		Baseline:  "0123456789abcdef0123456789abcdef01234567",
		DiffText:  "M\tFix-bug.patch\nA\tPolish-docs.patch\n",
		OldSeries: []string{"Fix-bug.patch"},
		NewSeries: []string{"Fix-bug.patch", "Polish-docs.patch"},
	})

	wantLines := []string{
		"From: Test User <test@example.com>",
		"Date: " + date.Format(time.RFC1123Z),
		"Subject: [PATCH 0/2] *** SUBJECT HERE ***",
		"*** BLURB HERE ***",
		"---",
		"BASELINE=0123456789abcdef0123456789abcdef01234567",
		"M\tFix-bug.patch",
		"series changes:",
		"+Polish-docs.patch",
	}
	for _, line := range wantLines {
		if !strings.Contains(cover, line) {
			t.Errorf("cover missing %q:\n%s", line, cover)
		}
	}
}

func TestComposeCoverUnchangedSeries(t *testing.T) {
	t.Parallel()

	series := []string{"Fix-bug.patch"}
	cover := ComposeCover(CoverParams{
		Ident:     git.Identity{Name: "Test User", Email: "test@example.com"},
		Date:      time.Now(),
		Count:     1,
		Baseline:  "0123456789abcdef0123456789abcdef01234567",
		DiffText:  "M\tFix-bug.patch\n",
		OldSeries: series,
		NewSeries: series,
	})

	if strings.Contains(cover, "series changes:") {
		t.Errorf("identical manifests produced a series diff:\n%s", cover)
	}
	if !strings.Contains(cover, "Subject: [PATCH 0/1]") {
		t.Errorf("cover count wrong:\n%s", cover)
	}
}
