package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Domain codes raised by the cart, order and review services.
const (
	CodeCartNotFound            Code = "CART_NOT_FOUND"
	CodeCartEmpty               Code = "CART_EMPTY"
	CodeCartSyncFailed          Code = "CART_SYNC_FAILED"
	CodeStoreNotFound           Code = "STORE_NOT_FOUND"
	CodeMenuNotFound            Code = "MENU_NOT_FOUND"
	CodeOrderNotFound           Code = "ORDER_NOT_FOUND"
	CodeUserNotFound            Code = "USER_NOT_FOUND"
	CodePriceMismatch           Code = "PRICE_MISMATCH"
	CodeDifferentStoreItems     Code = "DIFFERENT_STORE_ITEMS"
	CodeInvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"
	CodeAccessDenied            Code = "ACCESS_DENIED"
	CodeReviewAlreadyExists     Code = "REVIEW_ALREADY_EXISTS"
)

// Category groups codes by how callers should react to them.
type Category string

const (
	CategoryValidation   Category = "validation"
	CategoryUnauthorized Category = "unauthorized"
	CategoryForbidden    Category = "forbidden"
	CategoryNotFound     Category = "not_found"
	CategoryConflict     Category = "conflict"
	CategoryTransient    Category = "transient"
	CategoryInternal     Category = "internal"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	Category       Category
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
		Category:       CategoryValidation,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
		Category:      CategoryUnauthorized,
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
		Category:      CategoryForbidden,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
		Category:      CategoryNotFound,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
		Category:      CategoryConflict,
	},
	CodeStateConflict: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "state transition disallowed",
		DetailsAllowed: true,
		Category:       CategoryConflict,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
		Category:       CategoryConflict,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
		Category:      CategoryInternal,
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
		Category:       CategoryTransient,
	},

	CodeCartNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "cart not found",
		Category:      CategoryNotFound,
	},
	CodeCartEmpty: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "cart is empty",
		Category:      CategoryNotFound,
	},
	CodeCartSyncFailed: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Retryable:     true,
		PublicMessage: "cart storage unavailable",
		Category:      CategoryTransient,
	},
	CodeStoreNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "store not found",
		Category:      CategoryNotFound,
	},
	CodeMenuNotFound: {
		HTTPStatus:     http.StatusNotFound,
		PublicMessage:  "menu not found",
		DetailsAllowed: true,
		Category:       CategoryNotFound,
	},
	CodeOrderNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "order not found",
		Category:      CategoryNotFound,
	},
	CodeUserNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "user not found",
		Category:      CategoryNotFound,
	},
	CodePriceMismatch: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "order total does not match current prices",
		DetailsAllowed: true,
		Category:       CategoryConflict,
	},
	CodeDifferentStoreItems: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "cart contains items from different stores",
		Category:      CategoryConflict,
	},
	CodeInvalidStatusTransition: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		PublicMessage:  "order status transition not allowed",
		DetailsAllowed: true,
		Category:       CategoryConflict,
	},
	CodeAccessDenied: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
		Category:      CategoryForbidden,
	},
	CodeReviewAlreadyExists: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "review already exists for this order",
		Category:      CategoryConflict,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// CategoryOf returns the category of err, treating untyped errors as internal.
func CategoryOf(err error) Category {
	if typed := As(err); typed != nil {
		return MetadataFor(typed.Code()).Category
	}
	return CategoryInternal
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

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
