package keydata

import "fmt"

// ResultKind classifies the outcome of a mutation attempt.
type ResultKind uint8

const (
	// ResultSuccess indicates the mutation was applied in full.
	ResultSuccess ResultKind = iota

	// ResultOutOfBounds indicates a value failed its key's range check.
	// The holder is left completely unmodified.
	ResultOutOfBounds

	// ResultUnsupported indicates no registered processor supports the
	// holder's type.
	ResultUnsupported

	// ResultUnremovable indicates the property is mandatory for the holder
	// type and can never be absent.
	ResultUnremovable

	// ResultAbsent indicates the holder does not currently carry the data.
	ResultAbsent
)

// String returns a readable name for the kind.
func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "SUCCESS"
	case ResultOutOfBounds:
		return "OUT_OF_BOUNDS"
	case ResultUnsupported:
		return "UNSUPPORTED"
	case ResultUnremovable:
		return "UNREMOVABLE"
	case ResultAbsent:
		return "ABSENT"
	}
	return "UNKNOWN"
}

// Replacement records one field transition performed by a successful
// mutation. Before is nil when the field was previously absent; After is nil
// when the field was removed.
type Replacement struct {
	Query  string
	Before any
	After  any
}

// TransactionResult is the outcome of a mutation attempt against a holder.
// Every set, apply and remove operation returns one; failures are reported
// here as values, never raised as panics or used as control flow.
type TransactionResult struct {
	kind     ResultKind
	replaced []Replacement
	err      error
}

// SuccessResult creates a successful result carrying the field transitions
// the mutation performed.
func SuccessResult(replaced ...Replacement) TransactionResult {
	return TransactionResult{kind: ResultSuccess, replaced: replaced}
}

// FailedResult creates a failed result with a reason. The holder is
// guaranteed untouched: mutations validate before writing and reject the
// whole call rather than applying a valid subset.
func FailedResult(kind ResultKind, err error) TransactionResult {
	if kind == ResultSuccess {
		panic("keydata: FailedResult requires a non-success kind")
	}
	return TransactionResult{kind: kind, err: err}
}

// Success reports whether the mutation was applied.
func (r TransactionResult) Success() bool { return r.kind == ResultSuccess }

// Kind returns the outcome classification.
func (r TransactionResult) Kind() ResultKind { return r.kind }

// Replaced returns the field transitions performed by a successful mutation.
func (r TransactionResult) Replaced() []Replacement { return r.replaced }

// Err returns the failure reason, or nil for successful results.
func (r TransactionResult) Err() error { return r.err }

// String returns a readable representation for debugging.
func (r TransactionResult) String() string {
	if r.Success() {
		return fmt.Sprintf("TransactionResult{%s, %d replaced}", r.kind, len(r.replaced))
	}
	return fmt.Sprintf("TransactionResult{%s: %v}", r.kind, r.err)
}
