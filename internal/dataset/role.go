package dataset

import (
	"errors"
	"fmt"
)

// ErrUnknownRole is returned by ParseRole for names it does not recognize.
var ErrUnknownRole = errors.New("unknown role")

// Role selects which of the three images of a case to load.
type Role int

const (
	// Photograph is the color fundus photograph.
	Photograph Role = iota
	// FieldOfViewMask delimits the valid, non-black-bordered region of the photograph.
	FieldOfViewMask
	// ExpertAnnotation is the reference vessel segmentation drawn by a human expert.
	ExpertAnnotation
)

// Roles lists every role in load order.
var Roles = []Role{Photograph, FieldOfViewMask, ExpertAnnotation}

func (r Role) String() string {
	switch r {
	case Photograph:
		return "photograph"
	case FieldOfViewMask:
		return "mask"
	case ExpertAnnotation:
		return "expert"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}
