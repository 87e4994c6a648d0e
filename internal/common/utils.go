package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes from crypto/rand and panics if
// the system random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Passwords and decrypted account records
// go through it once they have been used.
func WipeByteArray(b []byte) {
	clear(b)
}
