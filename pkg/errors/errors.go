package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	CodeDuplicateCode             Code = "DUPLICATE_CODE"
	CodeDuplicateValue            Code = "DUPLICATE_VALUE"
	CodeInvalidAttributeSelection Code = "INVALID_ATTRIBUTE_SELECTION"
	CodeProductNotFound           Code = "PRODUCT_NOT_FOUND"
	CodeVariantNotFound           Code = "VARIANT_NOT_FOUND"
	CodeInsufficientStock         Code = "INSUFFICIENT_STOCK"
	CodeInconsistentReservation   Code = "INCONSISTENT_RESERVATION"
	CodeMigrationMappingMissing   Code = "MIGRATION_MAPPING_MISSING"
)

// Metadata describes how callers should treat an error class.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	// SystemFault marks errors that must page someone instead of being shown
	// to the operator as correctable input.
	SystemFault bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
	},
	CodeStateConflict: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "state transition disallowed",
		DetailsAllowed: true,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
		SystemFault:   true,
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
		SystemFault:    true,
	},
	CodeDuplicateCode: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "attribute code already exists",
		DetailsAllowed: true,
	},
	CodeDuplicateValue: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "attribute value already exists",
		DetailsAllowed: true,
	},
	CodeInvalidAttributeSelection: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "invalid attribute selection",
		DetailsAllowed: true,
	},
	CodeProductNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "product not found",
	},
	CodeVariantNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "variant not found",
	},
	CodeInsufficientStock: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "not enough stock",
		DetailsAllowed: true,
	},
	CodeInconsistentReservation: {
		HTTPStatus:     http.StatusInternalServerError,
		PublicMessage:  "reservation protocol violated",
		DetailsAllowed: true,
		SystemFault:    true,
	},
	CodeMigrationMappingMissing: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "legacy value has no attribute mapping",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// IsSystemFault reports whether err should be escalated rather than shown to
// the caller as a correctable condition. Untyped errors count as faults.
func IsSystemFault(err error) bool {
	if err == nil {
		return false
	}
	typed := As(err)
	if typed == nil {
		return true
	}
	return MetadataFor(typed.Code()).SystemFault
}
