// Package common defines shared sentinel errors and small helpers used across
// nodekeeper components. Callers should use errors.Is / errors.As to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrTransactionFailure wraps any failure of a mutating transaction
	// against the record store. The transaction has been rolled back.
	ErrTransactionFailure = errors.New("transaction failure")

	// ErrDerivationFailure is returned when key derivation rejects its inputs.
	ErrDerivationFailure = errors.New("key derivation failure")

	// Registry errors.
	ErrAddressAlreadyPresent = errors.New("address already present")
	ErrMissingActiveServer   = errors.New("no active server")
	ErrEmptyRegistry         = errors.New("registry would become empty")
)

// AddressAlreadyPresentError carries the duplicate address. It matches
// ErrAddressAlreadyPresent via errors.Is.
type AddressAlreadyPresentError struct {
	Address string
}

func (e *AddressAlreadyPresentError) Error() string {
	return fmt.Sprintf("address already present: %q", e.Address)
}

func (e *AddressAlreadyPresentError) Is(target error) bool {
	return target == ErrAddressAlreadyPresent
}
