package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code        Code
		publicMsg   string
		retryable   bool
		detailsOK   bool
		systemFault bool
	}{
		{code: CodeValidation, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, publicMsg: "conflict detected"},
		{code: CodeInternal, publicMsg: "internal server error", retryable: true, systemFault: true},
		{code: CodeDependency, publicMsg: "dependency unavailable", retryable: true, detailsOK: true, systemFault: true},
		{code: CodeDuplicateCode, publicMsg: "attribute code already exists", detailsOK: true},
		{code: CodeDuplicateValue, publicMsg: "attribute value already exists", detailsOK: true},
		{code: CodeInvalidAttributeSelection, publicMsg: "invalid attribute selection", detailsOK: true},
		{code: CodeProductNotFound, publicMsg: "product not found"},
		{code: CodeVariantNotFound, publicMsg: "variant not found"},
		{code: CodeInsufficientStock, publicMsg: "not enough stock", detailsOK: true},
		{code: CodeInconsistentReservation, publicMsg: "reservation protocol violated", detailsOK: true, systemFault: true},
		{code: CodeMigrationMappingMissing, publicMsg: "legacy value has no attribute mapping", detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.SystemFault != tt.systemFault {
			t.Fatalf("code %s expected system fault %v got %v", tt.code, tt.systemFault, meta.SystemFault)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if !meta.SystemFault || meta.PublicMessage != "internal server error" {
		t.Fatalf("expected internal metadata, got %+v", meta)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsAndHasCodeFollowWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeVariantNotFound, "variant 7"))
	if got := As(err); got == nil || got.Code() != CodeVariantNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if !HasCode(err, CodeVariantNotFound) {
		t.Fatalf("HasCode should match wrapped code")
	}
	if HasCode(err, CodeProductNotFound) {
		t.Fatalf("HasCode matched the wrong code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsSystemFault(t *testing.T) {
	if IsSystemFault(nil) {
		t.Fatal("nil is not a fault")
	}
	if !IsSystemFault(stdErrors.New("untyped")) {
		t.Fatal("untyped errors count as faults")
	}
	if !IsSystemFault(New(CodeInconsistentReservation, "commit without reserve")) {
		t.Fatal("inconsistent reservation must be a fault")
	}
	if IsSystemFault(New(CodeInvalidAttributeSelection, "bad pair")) {
		t.Fatal("selection errors are correctable input")
	}
}

func TestMetadataHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeValidation:                http.StatusBadRequest,
		CodeInvalidAttributeSelection: http.StatusUnprocessableEntity,
		CodeVariantNotFound:           http.StatusNotFound,
		CodeDuplicateValue:            http.StatusConflict,
		CodeInconsistentReservation:   http.StatusInternalServerError,
		CodeDependency:                http.StatusServiceUnavailable,
	}
	for code, status := range tests {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("code %s expected status %d got %d", code, status, got)
		}
	}
}
