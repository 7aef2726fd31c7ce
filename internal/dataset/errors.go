package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode = errors.New("decode failure")

	// ErrEmptyCaseID is returned when a case identifier is empty.
	ErrEmptyCaseID = errors.New("empty case identifier")

	// ErrInvalidCaseID is returned for identifiers that would escape the dataset directories.
	ErrInvalidCaseID = errors.New("invalid case identifier")
)

// DecodeError reports that the image for one role of a case could not be read
// or decoded.
type DecodeError struct {
	CaseID string
	Role   Role
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("case %q: cannot decode %s image %s: %v", e.CaseID, e.Role, e.Path, e.Err)
}

// Unwrap exposes the underlying cause, so errors.Is(err, fs.ErrNotExist) holds
// for missing files.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes every DecodeError match ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
