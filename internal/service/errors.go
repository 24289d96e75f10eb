package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound: неизвестный файл, запрос, партнёр или другая сущность.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: действие над запросом не в статусе pending, повторное предъявление
	// сработавшего honeytoken и т.п.
	ErrInvalidState = errors.New("invalid state")

	// ErrConsentExpired: срок согласия истёк.
	ErrConsentExpired = errors.New("consent expired")

	// ErrConsentDenied: пользователь не разрешил этот вид защиты.
	ErrConsentDenied = errors.New("consent not granted")

	// ErrIntegrity: коллизия водяного знака или сбой записи журнала аудита.
	ErrIntegrity = errors.New("integrity violation")

	ErrValidation    = errors.New("validation failed")
	ErrInvalidAction = errors.New("invalid action")
	ErrForbidden     = errors.New("forbidden")

	ErrLoginTaken         = errors.New("login already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// notFound переводит gorm.ErrRecordNotFound в ErrNotFound с указанием сущности.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
	}
	return err
}

func invalidState(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidState)
}

func invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}
