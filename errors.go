package kev

import "fmt"

// QueryError reports a get() that resolved to zero results, or to more than
// one where exactly one was demanded. The message text is stable.
type QueryError struct {
	msg string
}

func (e *QueryError) Error() string { return e.msg }

func errNoResult() *QueryError {
	return &QueryError{msg: "This query did not return a result."}
}

func errMultipleResults(n int) *QueryError {
	return &QueryError{msg: fmt.Sprintf("This query should return exactly one result. Your query returned %d", n)}
}

// UniquenessError reports a save rejected because another document already
// holds the value of a unique field.
type UniquenessError struct {
	Field string
	Value any
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("There is already a %s with the value of %v", e.Field, e.Value)
}

// IndexConsistencyError reports that the primary document write succeeded
// but the index delta could not be fully applied. No compensating rollback
// is attempted; the caller decides how to reconcile.
type IndexConsistencyError struct {
	ID  string
	Err error
}

func (e *IndexConsistencyError) Error() string {
	return fmt.Sprintf("index update failed for document %s: %v", e.ID, e.Err)
}

func (e *IndexConsistencyError) Unwrap() error { return e.Err }
