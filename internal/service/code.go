package service

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	codeAlphabet = "0123456789"
	CodeLength   = 6
)

// GenerateCode returns a random 6 digit verification code. Leading zeros
// are allowed, the code is always handled as a string.
func GenerateCode() (string, error) {
	return gonanoid.Generate(codeAlphabet, CodeLength)
}

// codeOtherThan keeps drawing until the code differs from prev so a resend
// always invalidates the previous code.
func codeOtherThan(gen func() (string, error), prev *string) (string, error) {
	for {
		code, err := gen()
		if err != nil {
			return "", err
		}

		if prev == nil || code != *prev {
			return code, nil
		}
	}
}
