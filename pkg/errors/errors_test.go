package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
		category  Category
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true, category: CategoryValidation},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", category: CategoryUnauthorized},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied", category: CategoryForbidden},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", category: CategoryNotFound},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", category: CategoryConflict},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true, category: CategoryConflict},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true, category: CategoryInternal},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true, category: CategoryTransient},
		{code: CodeCartSyncFailed, status: http.StatusServiceUnavailable, publicMsg: "cart storage unavailable", retryable: true, category: CategoryTransient},
		{code: CodePriceMismatch, status: http.StatusConflict, publicMsg: "order total does not match current prices", detailsOK: true, category: CategoryConflict},
		{code: CodeInvalidStatusTransition, status: http.StatusUnprocessableEntity, publicMsg: "order status transition not allowed", detailsOK: true, category: CategoryConflict},
		{code: CodeAccessDenied, status: http.StatusForbidden, publicMsg: "access denied", category: CategoryForbidden},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.Category != tt.category {
			t.Fatalf("code %s expected category %s got %s", tt.code, tt.category, meta.Category)
		}
	}
}

func TestDomainCodeCategories(t *testing.T) {
	for _, code := range []Code{
		CodeCartNotFound, CodeCartEmpty, CodeStoreNotFound, CodeMenuNotFound,
		CodeOrderNotFound, CodeUserNotFound,
	} {
		if got := MetadataFor(code).Category; got != CategoryNotFound {
			t.Fatalf("code %s expected not_found category, got %s", code, got)
		}
	}
	if got := MetadataFor(CodeReviewAlreadyExists).Category; got != CategoryConflict {
		t.Fatalf("expected conflict category for duplicate review, got %s", got)
	}
	if got := MetadataFor(CodeDifferentStoreItems).Category; got != CategoryConflict {
		t.Fatalf("expected conflict category for mixed stores, got %s", got)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
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

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
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

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}

	outer := fmt.Errorf("handler: %w", New(CodeOrderNotFound, "order missing"))
	if !IsCode(outer, CodeOrderNotFound) {
		t.Fatalf("IsCode should see through fmt wrapping")
	}
	if IsCode(stdErrors.New("plain"), CodeOrderNotFound) {
		t.Fatalf("IsCode should be false for untyped errors")
	}
}

func TestCategoryOfUntypedIsInternal(t *testing.T) {
	if got := CategoryOf(stdErrors.New("boom")); got != CategoryInternal {
		t.Fatalf("expected internal category, got %s", got)
	}
	if got := CategoryOf(New(CodeCartSyncFailed, "redis down")); got != CategoryTransient {
		t.Fatalf("expected transient category, got %s", got)
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "reviews_order_id_key", TableName: "reviews"}
	err := Wrap(CodeReviewAlreadyExists, pgErr, "insert review")

	d := Dump(err)
	if d.Code != CodeReviewAlreadyExists {
		t.Fatalf("expected code in dump, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "reviews_order_id_key" || d.PGTable != "reviews" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}
}
