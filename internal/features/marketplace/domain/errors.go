package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared across all platform adapters. Vendor rejections carry the
// vendor's own (stringified) code instead of one of these.
const (
	CodeMissingPlatform     = "MISSING_PLATFORM"
	CodeMissingCredentials  = "MISSING_CREDENTIALS"
	CodeUnsupportedPlatform = "UNSUPPORTED_PLATFORM"
	CodeInvalidParams       = "INVALID_PARAMS"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeNotSupported        = "NOT_SUPPORTED"

	CodeFetchProductsError = "FETCH_PRODUCTS_ERROR"
	CodeFetchProductError  = "FETCH_PRODUCT_ERROR"
	CodeCreateProductError = "CREATE_PRODUCT_ERROR"
	CodeUpdateProductError = "UPDATE_PRODUCT_ERROR"
	CodeFetchOrdersError   = "FETCH_ORDERS_ERROR"
	CodeFetchOrderError    = "FETCH_ORDER_ERROR"
	CodeUpdateOrderError   = "UPDATE_ORDER_ERROR"
	CodeAuthError          = "AUTH_ERROR"
)

// ConnectorError is the uniform failure shape for every connector operation.
// Nothing escapes an adapter as a raw transport error.
type ConnectorError struct {
	// Message is a human-readable description, passed through unmodified for
	// vendor rejections.
	Message string `json:"message"`
	// Code is the machine-readable code: one of the Code* constants, or the
	// vendor's own error code stringified.
	Code string `json:"code"`
	// StatusCode is the HTTP-equivalent status (400 vendor rejection, 404 not
	// found, 501 not supported, 500 transport/unexpected).
	StatusCode int `json:"status_code,omitempty"`
	// PlatformError is the raw vendor error payload, kept for diagnostics.
	PlatformError any `json:"platform_error,omitempty"`

	cause error
}

// NewConnectorError builds a ConnectorError.
func NewConnectorError(message, code string, statusCode int, platformError any) *ConnectorError {
	return &ConnectorError{
		Message:       message,
		Code:          code,
		StatusCode:    statusCode,
		PlatformError: platformError,
	}
}

// WrapError classifies an unexpected failure under the given operation code.
// An error that is already a ConnectorError passes through unchanged, so
// typed failures are never double-wrapped.
func WrapError(err error, message, code string) *ConnectorError {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce
	}
	return &ConnectorError{
		Message:    message,
		Code:       code,
		StatusCode: http.StatusInternalServerError,
		cause:      err,
	}
}

// Error implements the error interface.
func (e *ConnectorError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Code, e.cause)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ConnectorError) Unwrap() error {
	return e.cause
}

// ErrorCode extracts the connector code from an error, or empty when the
// error is not a ConnectorError.
func ErrorCode(err error) string {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
