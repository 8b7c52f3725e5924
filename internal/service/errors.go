package service

import (
	"errors"
	"fmt"

	"social_board/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// storageErr 把 repository 的錯誤轉成服務層的錯誤種類
func storageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ErrorCode 錯誤事件與 API 回應使用的代碼
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "bad_request"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal_error"
	}
}

// PublicMessage 內部錯誤不外洩細節
func PublicMessage(err error) string {
	if ErrorCode(err) == "internal_error" {
		return "internal error"
	}
	return err.Error()
}
