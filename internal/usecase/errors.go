package usecase

import (
	"errors"
	"fmt"
)

// エラーの種別。handlerはStatusを、クライアントはKindを見る
const (
	KindInvalidRequest = "INVALID_REQUEST"
	KindNotFound       = "NOT_FOUND"
	KindInvalidAddress = "INVALID_ADDRESS"
	KindInvalidState   = "INVALID_STATE"
	KindInternal       = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Kind    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

func NewHTTPError(status int, kind string, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    kind,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
