package tokenizer

import "github.com/pkg/errors"

var (
	// ErrInvalidModel reports a malformed or contradictory piece table.
	ErrInvalidModel = errors.New("invalid model")

	// ErrUnknownID is returned by Decode for an id above EosID with no piece.
	ErrUnknownID = errors.New("unknown id")

	// ErrCoverage means a byte position could not be reached by any piece and
	// the single-byte fallback was disabled, or a fallback piece has no id.
	ErrCoverage = errors.New("coverage error")
)
