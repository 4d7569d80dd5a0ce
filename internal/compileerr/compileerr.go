// Package compileerr defines the fatal, position-free errors a Wasp
// compile can fail with. Wasp has no incremental recompilation and no
// source-position diagnostics (spec.md's Non-goals exclude both); every
// error here is terminal, and the caller's only job is to print it and
// exit non-zero.
package compileerr

import "github.com/pkg/errors"

// Kind categorizes a compile failure.
type Kind int

const (
	// Parse means the input did not match the grammar.
	Parse Kind = iota
	// UnknownIdentifier means the resolver found no binding for a name.
	UnknownIdentifier
	// Arity means an operator or intrinsic received the wrong number of
	// parameters.
	Arity
	// Misuse covers malformed-but-well-typed constructs: recur rebinding
	// a non-local, an unknown wasm opcode mnemonic, an empty loop body,
	// a no-argument do, a call whose first argument isn't a FnSig.
	Misuse
	// IO covers missing files and unwritable output.
	IO
)

func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse error"
	case UnknownIdentifier:
		return "unknown identifier"
	case Arity:
		return "arity error"
	case Misuse:
		return "misuse"
	case IO:
		return "I/O error"
	default:
		return "error"
	}
}

// Error is a fatal compiler error carrying only a Kind and a message —
// deliberately no line/column, per spec.md's Non-goals.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error of the given kind with a plain message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind, chaining cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// Parsef builds a Parse-kind error.
func Parsef(format string, args ...interface{}) *Error {
	return New(Parse, errors.Errorf(format, args...).Error())
}

// UnknownIdentifierf builds an UnknownIdentifier-kind error.
func UnknownIdentifierf(format string, args ...interface{}) *Error {
	return New(UnknownIdentifier, errors.Errorf(format, args...).Error())
}

// Arityf builds an Arity-kind error.
func Arityf(format string, args ...interface{}) *Error {
	return New(Arity, errors.Errorf(format, args...).Error())
}

// Misusef builds a Misuse-kind error.
func Misusef(format string, args ...interface{}) *Error {
	return New(Misuse, errors.Errorf(format, args...).Error())
}

// IOf builds an IO-kind error wrapping cause.
func IOf(cause error, format string, args ...interface{}) *Error {
	return Wrap(IO, cause, errors.Errorf(format, args...).Error())
}
