// Package levelapi is the boundary to the level container format. It owns
// the classified error kinds reported while reading or writing paths and the
// Source interface used to pull a single path out of a level container.
package levelapi

import (
	"errors"
	"fmt"
)

// Kind classifies a level API failure.
type Kind string

const (
	KindUnknown               Kind = "UNKNOWN"
	KindIORead                Kind = "IO_READ"
	KindIOWrite               Kind = "IO_WRITE"
	KindIOReadPastEOF         Kind = "IO_READ_PAST_EOF"
	KindUnknownEnumValue      Kind = "UNKNOWN_ENUM_VALUE"
	KindEmptyPropertyName     Kind = "EMPTY_PROPERTY_NAME"
	KindEmptyTypeName         Kind = "EMPTY_TYPE_NAME"
	KindDuplicatePropertyKey  Kind = "DUPLICATE_PROPERTY_KEY"
	KindDuplicatePropertyName Kind = "DUPLICATE_PROPERTY_NAME"
	KindDuplicateEnumName     Kind = "DUPLICATE_ENUM_NAME"
	KindPropertyNotFound      Kind = "PROPERTY_NOT_FOUND"
	KindInvalidGame           Kind = "INVALID_GAME"
	KindInvalidJSON           Kind = "INVALID_JSON"
	KindJSONVersionTooNew     Kind = "JSON_VERSION_TOO_NEW"
	KindJSONVersionTooOld     Kind = "JSON_VERSION_TOO_OLD"
	KindJSONNeedsUpgrading    Kind = "JSON_NEEDS_UPGRADING"
	KindBadCameraName         Kind = "BAD_CAMERA_NAME"
	KindOpenPath              Kind = "OPEN_PATH"
	KindCameraOutOfBounds     Kind = "CAMERA_OUT_OF_BOUNDS"
	KindValueOutOfRange       Kind = "VALUE_OUT_OF_RANGE"
	KindStructureMismatch     Kind = "STRUCTURE_MISMATCH"
	KindMissingKey            Kind = "JSON_KEY_NOT_FOUND"
)

// Error is a classified level API failure.
type Error struct {
	Kind    Kind
	Message string // detail for logs and the user-facing suffix
	Key     string // missing JSON key, set for KindMissingKey
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind so callers can compare against the
// sentinel-style values returned by New.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New builds a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a classified error around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// MissingKey reports a required JSON key that was absent.
func MissingKey(key string) *Error {
	return &Error{Kind: KindMissingKey, Message: "missing key " + key, Key: key}
}

// KindOf extracts the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var messagePrefixes = map[Kind]string{
	KindIORead:                "IO read failure: ",
	KindIOWrite:               "IO write failure: ",
	KindUnknownEnumValue:      "Unknown enum value: ",
	KindIOReadPastEOF:         "IO read past EOF: ",
	KindEmptyPropertyName:     "Empty property name: ",
	KindEmptyTypeName:         "Empty type name: ",
	KindDuplicatePropertyKey:  "Duplicated property key: ",
	KindDuplicatePropertyName: "Duplicated property name: ",
	KindDuplicateEnumName:     "Duplicated enum name: ",
	KindPropertyNotFound:      "Property not found: ",
	KindInvalidGame:           "Invalid game name: ",
	KindInvalidJSON:           "Invalid json, can't parse: ",
	KindJSONVersionTooNew:     "Json version too new: ",
	KindJSONVersionTooOld:     "Json version too old: ",
	KindJSONNeedsUpgrading:    "Json needs upgrading: ",
	KindBadCameraName:         "Bad camera name: ",
	KindOpenPath:              "Open path failure: ",
	KindCameraOutOfBounds:     "Camera out of bounds: ",
	KindValueOutOfRange:       "Value out of range: ",
	KindStructureMismatch:     "Structure mismatch: ",
}

// GenericFailure is shown for errors that carry no recognised kind.
const GenericFailure = "Failed to load json"

// UserMessage renders err as the single message shown to the user when an
// open attempt fails.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return GenericFailure
	}
	if e.Kind == KindMissingKey {
		return "Missing json key: " + e.Key
	}
	prefix, ok := messagePrefixes[e.Kind]
	if !ok {
		return GenericFailure
	}
	return prefix + e.Message
}
