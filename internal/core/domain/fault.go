package domain

import (
	"errors"
	"fmt"
)

type FaultKind string

const (
	FaultInvalidRequest      FaultKind = "INVALID_REQUEST"
	FaultNotFound            FaultKind = "NOT_FOUND"
	FaultInsufficientStock   FaultKind = "INSUFFICIENT_STOCK"
	FaultUpstreamUnavailable FaultKind = "UPSTREAM_UNAVAILABLE"
	FaultConflict            FaultKind = "CONFLICT"
)

// Resource names the entity a NotFound fault refers to.
type Resource string

const (
	ResourceProduct   Resource = "product"
	ResourceInventory Resource = "inventory"
)

// Fault is a categorized failure surfaced by the inventory core. Kind is
// meant for programmatic dispatch, Detail for humans.
type Fault struct {
	kind     FaultKind
	resource Resource
	detail   string
	cause    error
}

func NewFault(kind FaultKind, detail string) *Fault {
	return &Fault{kind: kind, detail: detail}
}

func WrapFault(kind FaultKind, err error, detail string) *Fault {
	if err == nil {
		return NewFault(kind, detail)
	}
	return &Fault{kind: kind, detail: detail, cause: err}
}

// NotFoundFault builds a NotFound fault tagged with the missing resource.
func NotFoundFault(resource Resource, detail string) *Fault {
	return &Fault{kind: FaultNotFound, resource: resource, detail: detail}
}

func (f *Fault) Kind() FaultKind {
	if f == nil {
		return ""
	}
	return f.kind
}

func (f *Fault) Resource() Resource {
	if f == nil {
		return ""
	}
	return f.resource
}

func (f *Fault) Detail() string {
	if f == nil {
		return ""
	}
	return f.detail
}

// Retryable reports whether repeating the same call may succeed.
func (f *Fault) Retryable() bool {
	switch f.Kind() {
	case FaultConflict, FaultUpstreamUnavailable:
		return true
	}
	return false
}

func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.kind, f.detail, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.kind, f.detail)
}

func (f *Fault) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.cause
}

// AsFault returns the first Fault in err's chain, or nil.
func AsFault(err error) *Fault {
	if err == nil {
		return nil
	}
	var typed *Fault
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf returns the fault kind carried by err, or "" when err is not a Fault.
func KindOf(err error) FaultKind {
	return AsFault(err).Kind()
}
