package user

import "errors"

var ErrUserNotFound = errors.New("user not found")

type User struct {
	Id          int
	Uid         string
	Email       string
	DisplayName string
	// Currency is the ISO 4217 code new projects default to.
	Currency string
	// Locale drives date and amount formatting of exports, e.g. "fr-FR".
	Locale string
}

const (
	DefaultCurrency = "EUR"
	DefaultLocale   = "en-US"
)
