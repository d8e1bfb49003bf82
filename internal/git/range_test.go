package git

import (
	"testing"

	"github.com/gitpile/gitpile/internal/errors"
)

func TestResolveRange(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	b := openTestBackend(t, repo)
	gitRun(t, repo, "branch", "base")
	commitFile(t, repo, "topic.txt", "topic\n", "Topic change")

	baseHash, _ := b.Resolve("base")
	headHash, _ := b.Resolve("HEAD")

	tests := map[string]struct {
		spec       string
		wantBase   Commit
		wantResult Commit
	}{
		"explicit A..B":            {spec: "base..master", wantBase: baseHash, wantResult: headHash},
		"empty spec uses defaults": {spec: "", wantBase: baseHash, wantResult: headHash},
		"single token names base":  {spec: "base", wantBase: baseHash, wantResult: headHash},
		"open-ended result":        {spec: "base..", wantBase: baseHash, wantResult: headHash},
		"open-ended base":          {spec: "..master", wantBase: baseHash, wantResult: headHash},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rng, err := ResolveRange(b, test.spec, "base", "HEAD")
			if err != nil {
				t.Fatalf("ResolveRange(%q): %v", test.spec, err)
			}
			if rng.Base != test.wantBase {
				t.Errorf("Base = %s, want %s", rng.Base, test.wantBase)
			}
			if rng.Result != test.wantResult {
				t.Errorf("Result = %s, want %s", rng.Result, test.wantResult)
			}
		})
	}
}

func TestResolveRangeInvalidToken(t *testing.T) {
	t.Parallel()

	b := openTestBackend(t, setupTestRepo(t))

	_, err := ResolveRange(b, "master..nope", "master", "HEAD")
	if err == nil {
		t.Fatal("ResolveRange succeeded with unresolvable result")
	}
	if !errors.Is(err, errors.ErrInvalidRange) {
		t.Errorf("error %v does not match ErrInvalidRange", err)
	}

	var re *errors.RangeError
	if !errors.As(err, &re) {
		t.Fatalf("error %v is not a RangeError", err)
	}
	if re.Token != "nope" {
		t.Errorf("Token = %q, want nope", re.Token)
	}
}

func TestRangeSpec(t *testing.T) {
	t.Parallel()

	rng := Range{BaseRef: "master", ResultRef: "HEAD"}
	if rng.Spec() != "master..HEAD" {
		t.Errorf("Spec() = %q", rng.Spec())
	}
}
