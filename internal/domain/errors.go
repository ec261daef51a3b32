package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NotFoundError reports that a requested entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

// DuplicateEntryError reports a unique-constraint conflict on a write.
type DuplicateEntryError struct {
	Entity string
	Detail string
}

func (e *DuplicateEntryError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s already exists: %s", e.Entity, e.Detail)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// ConflictError reports a referential-integrity conflict, typically an
// attempt to delete a category still referenced by a product.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("integrity violation: %s", e.Detail)
	}
	return "integrity violation"
}

// InvalidInputError reports a request value that breaks a domain rule
// before it reaches storage, such as a name that is blank after trimming.
type InvalidInputError struct {
	Field  string
	Detail string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// UnknownReferenceError reports category ids that were requested for
// association but do not exist. IDs carries every missing id, not just the
// first one encountered.
type UnknownReferenceError struct {
	IDs []int64
}

func (e *UnknownReferenceError) Error() string {
	ids := make([]int64, len(e.IDs))
	copy(ids, e.IDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("unknown category ids: %s", strings.Join(parts, ", "))
}
