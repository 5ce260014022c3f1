//go:build invariants

package arena

// invariants enables poisoning of freed blocks and address ownership
// checks. Build or test with -tags invariants to turn it on.
const invariants = true
