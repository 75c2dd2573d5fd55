package services

import "fmt"

// Domain error taxonomy. Handlers translate these to HTTP; anything else
// coming out of a workflow is a storage failure and maps to a generic 500.
// None of these errors leave mutations behind: workflows validate before
// mutating, and once a mutating statement ran the transaction coordinator
// rolls everything back before the error surfaces.

// ValidationError reports missing or malformed input, naming every offending
// field rather than just the first.
type ValidationError struct {
	Message  string
	Required []string
	Missing  []string
	Item     any // offending line-item payload, when the failure is per-item
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Missing)
	}
	return e.Message
}

// ConflictError reports a uniqueness violation (e.g. duplicate invoice number).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Resource string
	Fields   map[string]any
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// InsufficientStockError reports a quantity guard failure on invoice creation
// or inventory removal.
type InsufficientStockError struct {
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Product, e.Requested, e.Available)
}
