// Package git is gitpile's version-control backend.
//
// It exposes the capability surface the pile engine consumes: revision
// resolution, commit enumeration, patch rendering and application,
// structural diffs, worktree lifecycle and ref updates. Read-only lookups
// go through go-git; everything go-git cannot express (format-patch, am,
// linked worktrees, update-ref) is invoked as a git CLI argument vector,
// never as a shell command string.
package git
