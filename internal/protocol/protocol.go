// Package protocol enforces per-destination payload shape and performs the
// delivery call.
//
// The generic compliance rules express editorial policy; this stage
// expresses the wire constraints of each destination family. They are
// deliberately decoupled so a destination's API shape can change without
// touching authored compliance rules.
package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownFamily is returned when a destination's family has no gateway
// implementation. This is an operator misconfiguration, not a content fault.
var ErrUnknownFamily = errors.New("unknown destination family")

// RejectionError reports a payload that the destination family's API shape
// rules rejected. Rejections are deterministic for unchanged content.
type RejectionError struct {
	Family  string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s payload rejected: %s", e.Family, e.Message)
}

func rejection(family, format string, args ...any) *RejectionError {
	return &RejectionError{Family: family, Message: fmt.Sprintf(format, args...)}
}
