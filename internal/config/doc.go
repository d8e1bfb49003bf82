// Package config holds the typed pile configuration.
//
// The configuration lives in the repository's git config under the pile
// section (pile.dir, pile.branch, pile.tracking-branch, ...). It is read
// once into a Config value with a fixed, enumerated key set and validated
// for completeness before any command mutates anything; unknown pile.*
// keys are ignored.
package config
