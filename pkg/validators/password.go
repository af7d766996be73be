package validators

import "errors"

var (
	ErrPasswordEmpty     = errors.New("can't be blank")
	ErrPasswordTooLong   = errors.New("is too long (maximum is 255 characters)")
	ErrPasswordMismatch  = errors.New("doesn't match password")
	ErrNameEmpty         = errors.New("can't be blank")
	ErrNameTooLong       = errors.New("is too long (maximum is 100 characters)")
	ErrEmailAlreadyTaken = errors.New("has already been taken")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	return nil
}

func ConfirmationValidator(p, confirmation string) error {
	if p != confirmation {
		return ErrPasswordMismatch
	}

	return nil
}

func NameValidator(n string) error {
	if n == "" {
		return ErrNameEmpty
	}

	if len([]rune(n)) > 100 {
		return ErrNameTooLong
	}

	return nil
}
