// Package file stores pelagia settings in a TOML file, by default
// ~/.pelagia/config.toml. Saved settings sit below flags and environment
// variables in precedence.
package file
