//go:build !invariants

package entry

const invariants = false
