package asn1_der

import "errors"

// Error kinds returned by the cursor and by the decoders built on top of it.
// Wrap with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	// ErrMalformed means the buffer is not valid DER at all: truncated
	// elements, non-minimal lengths, indefinite lengths, or trailing data
	// inside a structure that was popped.
	ErrMalformed = errors.New("malformed DER")

	// ErrInvalid means the input is structurally valid DER but violates a
	// syntactic rule of the structure being decoded: wrong tag or class,
	// wrong encoding, empty where content is required, or a forbidden value.
	ErrInvalid = errors.New("invalid value")

	// ErrUnsupported means the input is well-formed per the standard but
	// uses a construct this library recognizes and does not implement.
	// Callers may choose to skip the offending structure instead of
	// rejecting the whole input.
	ErrUnsupported = errors.New("unsupported construct")

	// ErrMemory means one of the static limits (nesting depth, OID arcs, or
	// a decoder's record capacity) was reached. The input may be valid; it
	// is simply larger than this library is willing to decode.
	ErrMemory = errors.New("static memory limit reached")
)
