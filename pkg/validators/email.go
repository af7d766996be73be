// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
)

var (
	ErrEmailEmpty   = errors.New("can't be blank")
	ErrEmailInvalid = errors.New("is invalid")
	ErrEmailTooLong = errors.New("is too long (maximum is 255 characters)")
)

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if len(e) > 255 {
		return ErrEmailTooLong
	}

	// ParseAddress also accepts things like "Ana <ana@x.com>", only
	// take bare addresses
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}
