package model

import (
	"fmt"

	"github.com/milk9111/pathedit/levelapi"
)

// LoadReason is the coarse class of a load failure.
type LoadReason int

const (
	ReasonMalformedInput LoadReason = iota + 1
	ReasonUnresolvedType
	ReasonVersionMismatch
	ReasonStructural
)

func (r LoadReason) String() string {
	switch r {
	case ReasonMalformedInput:
		return "malformed input"
	case ReasonUnresolvedType:
		return "unresolved type"
	case ReasonVersionMismatch:
		return "version mismatch"
	case ReasonStructural:
		return "structural inconsistency"
	default:
		return "unknown"
	}
}

// LoadError is returned when a path cannot be loaded. Err carries the
// specific classified failure.
type LoadError struct {
	Reason LoadReason
	Err    *levelapi.Error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("model: load: %s: %v", e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func reasonFor(kind levelapi.Kind) LoadReason {
	switch kind {
	case levelapi.KindUnknownEnumValue, levelapi.KindDuplicateEnumName:
		return ReasonUnresolvedType
	case levelapi.KindJSONVersionTooOld, levelapi.KindJSONNeedsUpgrading, levelapi.KindJSONVersionTooNew:
		return ReasonVersionMismatch
	case levelapi.KindCameraOutOfBounds, levelapi.KindBadCameraName,
		levelapi.KindDuplicatePropertyName, levelapi.KindValueOutOfRange,
		levelapi.KindStructureMismatch:
		return ReasonStructural
	default:
		return ReasonMalformedInput
	}
}

func loadFailure(err *levelapi.Error) *LoadError {
	return &LoadError{Reason: reasonFor(err.Kind), Err: err}
}
