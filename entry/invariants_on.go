//go:build invariants

package entry

// invariants makes Reference and Dereference panic on released entries.
const invariants = true
