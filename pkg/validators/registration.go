package validators

import (
	"sort"
	"strings"
)

// Errors maps a form field to the messages it failed with.
type Errors map[string][]string

func (e Errors) Add(field string, err error) {
	e[field] = append(e[field], err.Error())
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Fields returns the failing field names in a stable order
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}

	sort.Strings(fields)
	return fields
}

// Full returns messages like "email is invalid"
func (e Errors) Full() []string {
	var out []string
	for _, f := range e.Fields() {
		for _, msg := range e[f] {
			out = append(out, strings.ReplaceAll(f, "_", " ")+" "+msg)
		}
	}

	return out
}

type Registration struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Normalize trims the fields that shouldn't carry surrounding whitespace.
// Passwords are kept as typed.
func (r Registration) Normalize() Registration {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	return r
}

// ValidateRegistration runs every field check and collects all failures.
// Uniqueness of the email is checked against storage by the caller.
func ValidateRegistration(r Registration) Errors {
	errs := Errors{}

	if err := NameValidator(r.Name); err != nil {
		errs.Add("name", err)
	}

	if err := EmailValidator(r.Email); err != nil {
		errs.Add("email", err)
	}

	if err := PasswordValidator(r.Password); err != nil {
		errs.Add("password", err)
	}

	if err := ConfirmationValidator(r.Password, r.PasswordConfirmation); err != nil {
		errs.Add("password_confirmation", err)
	}

	return errs
}
