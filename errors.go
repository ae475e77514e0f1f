package keydata

import (
	"errors"
	"fmt"
	"reflect"
)

// Request-time sentinel errors. These are returned through TransactionResult
// or option values and are never raised as panics.
var (
	// ErrUnremovable is returned when removing a property that is mandatory
	// for the holder type, such as a vital statistic that can never be absent.
	ErrUnremovable = errors.New("keydata: property is mandatory and cannot be removed")

	// ErrUnsupported is returned when no registered processor supports the
	// holder's type for the requested bundle or key.
	ErrUnsupported = errors.New("keydata: holder type is not supported")

	// ErrAbsent is returned when the holder does not currently carry the
	// requested data.
	ErrAbsent = errors.New("keydata: holder does not carry this data")
)

// DuplicateKeyError is returned during registration when two keys share an
// identifier, or when the same key is registered twice. Registration errors
// are fatal: Builder.Init panics on them.
type DuplicateKeyError struct {
	Name string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("keydata: duplicate key %q", e.Name)
}

// AmbiguousProcessorError is returned during registration when two processors
// for the same bundle or key cannot be ordered by holder-type specificity.
// Ties are detected at registration, never at call time.
type AmbiguousProcessorError struct {
	// Subject is the bundle name or key identifier both processors serve.
	Subject string

	// First and Second are the conflicting holder types.
	First  reflect.Type
	Second reflect.Type
}

func (e *AmbiguousProcessorError) Error() string {
	return fmt.Sprintf("keydata: ambiguous processors for %q: holder types %v and %v cannot be ordered",
		e.Subject, e.First, e.Second)
}

// OutOfBoundsError is returned when a value offered to a bounded key falls
// outside the key's [Min, Max] range under the key's comparison rule.
type OutOfBoundsError struct {
	Key   string
	Value any
	Min   any
	Max   any
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("keydata: value %v for key %q is outside bounds [%v, %v]",
		e.Value, e.Key, e.Min, e.Max)
}

// DeserializeError is returned when a document cannot be decoded into a
// bundle: the bundle is unknown, the content version does not match, a
// required field is missing, or a field value cannot be coerced.
type DeserializeError struct {
	Bundle string
	Field  string
	Err    error
}

func (e *DeserializeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("keydata: cannot deserialize bundle %q: %v", e.Bundle, e.Err)
	}
	return fmt.Sprintf("keydata: cannot deserialize bundle %q: field %q: %v", e.Bundle, e.Field, e.Err)
}

func (e *DeserializeError) Unwrap() error { return e.Err }
