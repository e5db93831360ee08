package services

import (
	"errors"
	"time"

	customerrors "github.com/axellelanca/urlregistry/internal/errors"
)

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func isNotFound(err error) bool {
	return errors.Is(err, customerrors.ErrShortCodeNotFound)
}

func isExpired(err error) bool {
	return errors.Is(err, customerrors.ErrExpired)
}
