// errors.go: the public error taxonomy (§7), built on go-errors.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package embercache

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Code is the small public status enum spec.md §4.8/§6 describes. Façade
// methods return a plain error; CodeOf maps that error onto a Code so
// callers that only care about the taxonomy (and not the go-errors context)
// can switch on it without inspecting the error chain.
type Code int

const (
	CodeOK Code = iota
	CodeInvalidArg
	CodeInvalidType
	CodeKeyNotExist
	CodeOverflow
	CodeNoKeys
	CodeMemoryFull
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeInvalidArg:
		return "invalid-arg"
	case CodeInvalidType:
		return "invalid-type"
	case CodeKeyNotExist:
		return "key-not-exist"
	case CodeOverflow:
		return "overflow"
	case CodeNoKeys:
		return "no-keys"
	case CodeMemoryFull:
		return "memory-full"
	default:
		return "unknown"
	}
}

// Error codes for embercache operations, one per §7 taxonomy entry.
const (
	ErrCodeInvalidArg  errors.ErrorCode = "EMBERCACHE_INVALID_ARG"
	ErrCodeInvalidType errors.ErrorCode = "EMBERCACHE_INVALID_TYPE"
	ErrCodeKeyNotExist errors.ErrorCode = "EMBERCACHE_KEY_NOT_EXIST"
	ErrCodeOverflow    errors.ErrorCode = "EMBERCACHE_OVERFLOW"
	ErrCodeNoKeys      errors.ErrorCode = "EMBERCACHE_NO_KEYS"
	ErrCodeMemoryFull  errors.ErrorCode = "EMBERCACHE_MEMORY_FULL"
	ErrCodeInvalidConfig errors.ErrorCode = "EMBERCACHE_INVALID_CONFIG"
)

const (
	msgInvalidArg    = "invalid argument"
	msgInvalidType   = "key exists but is not the expected type"
	msgKeyNotExist   = "key does not exist"
	msgOverflow      = "operation would overflow"
	msgNoKeys        = "keyspace is empty"
	msgMemoryFull    = "memory governor could not free enough memory"
	msgInvalidConfig = "invalid configuration"
)

// NewErrInvalidArg reports an out-of-domain argument: a null handle, a bit
// outside {0,1}, a negative offset, an unrecognized offset_status, or an
// unparseable expire.
func NewErrInvalidArg(command, reason string) error {
	return errors.NewWithContext(ErrCodeInvalidArg, msgInvalidArg, map[string]interface{}{
		"command": command,
		"reason":  reason,
	})
}

// NewErrInvalidType reports a type mismatch between the command issued and
// the value stored at key.
func NewErrInvalidType(key, want, got string) error {
	return errors.NewWithContext(ErrCodeInvalidType, msgInvalidType, map[string]interface{}{
		"key":      key,
		"expected": want,
		"actual":   got,
	})
}

// NewErrKeyNotExist reports a lookup miss, or a bit-position search with an
// explicit end and no match.
func NewErrKeyNotExist(key string) error {
	return errors.NewWithField(ErrCodeKeyNotExist, msgKeyNotExist, "key", key)
}

// NewErrOverflow reports arithmetic on an integer string leaving 64-bit
// range, a result exceeding the 512 MiB string cap, or a non-finite float
// result.
func NewErrOverflow(command, reason string) error {
	return errors.NewWithContext(ErrCodeOverflow, msgOverflow, map[string]interface{}{
		"command": command,
		"reason":  reason,
	})
}

// NewErrNoKeys reports random-key requested against an empty keyspace.
func NewErrNoKeys() error {
	return errors.NewWithContext(ErrCodeNoKeys, msgNoKeys, nil)
}

// NewErrMemoryFull reports that the memory governor could not bring usage
// under the configured cap, carrying the observed and limit byte counts for
// diagnostics.
func NewErrMemoryFull(used, limit uint64) error {
	return errors.NewWithContext(ErrCodeMemoryFull, msgMemoryFull, map[string]interface{}{
		"used_bytes":  used,
		"limit_bytes": limit,
	}).AsRetryable()
}

// NewErrInvalidConfig reports a Config field outside its valid domain.
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// CodeOf maps a returned error back onto the public Code enum; a nil error
// maps to CodeOK.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var coder errors.ErrorCoder
	if !goerrors.As(err, &coder) {
		return CodeInvalidArg
	}
	switch coder.ErrorCode() {
	case ErrCodeInvalidType:
		return CodeInvalidType
	case ErrCodeKeyNotExist:
		return CodeKeyNotExist
	case ErrCodeOverflow:
		return CodeOverflow
	case ErrCodeNoKeys:
		return CodeNoKeys
	case ErrCodeMemoryFull:
		return CodeMemoryFull
	default:
		return CodeInvalidArg
	}
}

// IsKeyNotExist reports whether err is a key-not-exist error.
func IsKeyNotExist(err error) bool { return errors.HasCode(err, ErrCodeKeyNotExist) }

// IsInvalidType reports whether err is a type-mismatch error.
func IsInvalidType(err error) bool { return errors.HasCode(err, ErrCodeInvalidType) }

// IsOverflow reports whether err is an overflow error.
func IsOverflow(err error) bool { return errors.HasCode(err, ErrCodeOverflow) }

// IsMemoryFull reports whether err is a memory-governor-exhausted error.
func IsMemoryFull(err error) bool { return errors.HasCode(err, ErrCodeMemoryFull) }

// IsRetryable reports whether err's underlying go-errors value marked
// itself retryable (currently only memory-full errors do).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the go-errors ErrorCode from err, or "" if err does
// not carry one.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts the structured context map attached to err, if
// any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if goerrors.As(err, &e) {
		return e.Context
	}
	return nil
}
