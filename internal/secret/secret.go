// Package secret generates credentials for the managed services.
package secret

import (
	"crypto/rand"
	"fmt"
)

// alphabet is restricted to characters that embed safely in env files,
// INI-style configs, YAML, and shell command lines. Notably absent: '=', '+',
// '/'
// and quoting characters.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxAccepted rejects raw bytes that would bias the modulo mapping onto the
// 62-character alphabet (62 * 4 = 248).
const maxAccepted = 248

// MinLength is the minimum credential length accepted anywhere in the system.
const MinLength = 12

// Generate returns a credential of at least minLength characters drawn from
// crypto/rand. It keeps drawing until enough alphabet characters have been
// accepted, so the result never comes up short after filtering. There is no
// fallback source: if the system random source fails, so does provisioning.
func Generate(minLength int) (string, error) {
	if minLength < MinLength {
		minLength = MinLength
	}

	out := make([]byte, 0, minLength)
	raw := make([]byte, minLength*2)
	for len(out) < minLength {
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("secure random source unavailable: %w", err)
		}
		for _, b := range raw {
			if b >= maxAccepted {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == minLength {
				break
			}
		}
	}
	return string(out), nil
}
