// Command gitpile reconciles a linear commit range with a persisted,
// ordered series of patch files kept in a pile directory.
//
// genpatches turns base..result into a regenerate-safe patch series,
// genbranch rebuilds the result branch by replaying that series over its
// recorded baseline, and format-patch extracts only the patches that
// changed since the last recorded pile state, with a cover letter, for
// sharing. init and destroy manage the pile.* configuration.
package main
