package mapcode

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by the codec. Use errors.Is to classify a failure;
// the typed errors below carry the details.
var (
	ErrUnknownTerritory   = errors.New("mapcode: unknown territory")
	ErrAmbiguousTerritory = errors.New("mapcode: ambiguous or unresolved territory")
	ErrInvalidPoint       = errors.New("mapcode: invalid point")
	ErrUnknownMapcode     = errors.New("mapcode: unknown mapcode")
	ErrInvalidTable       = errors.New("mapcode: invalid territory table")
)

// TerritoryError reports a failed territory resolution.
type TerritoryError struct {
	Input       string       // text as given by the caller
	Parent      *Territory   // disambiguation context, if any
	Candidates  []*Territory // matching territories when the name is ambiguous
	Suggestions []string     // close known names when the name is unknown
	Err         error        // ErrUnknownTerritory or ErrAmbiguousTerritory
}

func (e *TerritoryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %q", e.Err, e.Input)
	if e.Parent != nil {
		fmt.Fprintf(&b, " in %s", e.Parent.Name(NameInternational))
	}
	if len(e.Candidates) > 0 {
		names := make([]string, len(e.Candidates))
		for i, t := range e.Candidates {
			names[i] = t.Name(NameInternational)
		}
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(names, ", "))
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

func (e *TerritoryError) Unwrap() error { return e.Err }

// DecodeError reports why a mapcode string could not be decoded. It always
// matches ErrUnknownMapcode; when the territory prefix was the problem it
// also matches the resolver's error.
type DecodeError struct {
	Input  string
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%v: %q: %s", ErrUnknownMapcode, e.Input, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUnknownMapcode}
	}
	return []error{ErrUnknownMapcode, e.Cause}
}

func decodeErr(input, reason string, cause error) error {
	return &DecodeError{Input: input, Reason: reason, Cause: cause}
}
