package cli

import (
	"errors"

	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

func status(rec *models.ShortURL) string {
	if rec.IsExpired {
		return "Expired"
	}
	return "Active"
}

// guidance turns a lookup failure into the message shown to users.
func guidance(code string, err error) string {
	switch {
	case errors.Is(err, customerrors.ErrExpired):
		return "Short URL '" + code + "' has reached its expiration date and can no longer be used."
	case errors.Is(err, customerrors.ErrShortCodeNotFound):
		return "Short URL '" + code + "' doesn't exist. Check the code and try again."
	}
	return err.Error()
}
