// Package util contains any functions used across the application that don't match
// any other package
package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandStr returns a random letter-only string of length n. Only used for
// things that don't need to be secret, like request IDs
func RandStr(n int) string {
	return gonanoid.MustGenerate(charset, n)
}
