package id

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes tag an ID with the kind of record it names.
const (
	PrefixTransaction = "txn"
	PrefixExpense     = "exp"
)

// New returns a unique ID like "txn_5f1c0b7e-...".
func New(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Prefix returns the kind prefix of an ID, or "" if it has none.
// "exp_5f1c..." -> "exp"
func Prefix(id string) string {
	before, _, found := strings.Cut(id, "_")
	if !found {
		return ""
	}
	return before
}

// Valid reports whether id has a known prefix followed by a UUID.
func Valid(id string) bool {
	prefix, rest, found := strings.Cut(id, "_")
	if !found {
		return false
	}
	if prefix != PrefixTransaction && prefix != PrefixExpense {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
