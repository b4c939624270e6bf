package wire

import "github.com/pkg/errors"

// Sentinel error kinds. Callers match with errors.Is; messages carry the
// triggering byte offset where one applies.
var (
	ErrUnserializable        = errors.New("cannot serialize value")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrUnknownType           = errors.New("unknown custom type")
	ErrUnknownResource       = errors.New("unknown resource")
	ErrInfiniteConstructor   = errors.New("infinite loop in constructor")
	ErrTruncated             = errors.New("truncated input")
	ErrBadTag                = errors.New("bad tag byte")
	ErrBadLength             = errors.New("bad length")
	ErrBadReference          = errors.New("bad back-reference")
	ErrMalformedNumber       = errors.New("malformed number")
)
