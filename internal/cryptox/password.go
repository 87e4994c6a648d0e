// Package cryptox holds the two at-rest crypto layers used by the account
// vault: one-way Argon2i password hashing and two-way AES-256-GCM record
// encryption. The layers never share keys or salts.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/matthias/internal/common"
	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

// Params are the Argon2i cost parameters embedded in every encoded hash.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams matches the costs historically used for account files:
// 64 MiB, 12 passes, 5 lanes, 64-byte digest. The salt is random per hash.
var DefaultParams = Params{
	Memory:  64 * 1024,
	Time:    12,
	Threads: 5,
	KeyLen:  64,
	SaltLen: 16,
}

// HashPassword derives an Argon2i digest of password under a fresh random
// salt and returns it in PHC string form:
//
//	$argon2i$v=19$m=65536,t=12,p=5$<salt>$<digest>
//
// Salt and digest are unpadded standard base64, so verification needs
// nothing but the string itself.
func HashPassword(password []byte, p Params) string {
	salt := common.GenerateRandByteArray(int(p.SaltLen))
	digest := argon2.Key(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2i$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
}

// VerifyPassword recomputes the digest of password with the parameters and
// salt stored in encoded. A wrong password or an unparsable hash yields false.
func VerifyPassword(password []byte, encoded string) bool {
	p, salt, digest, err := DecodeHash(encoded)
	if err != nil {
		return false
	}
	candidate := argon2.Key(password, salt, p.Time, p.Memory, p.Threads, uint32(len(digest)))
	return subtle.ConstantTimeCompare(digest, candidate) == 1
}

// DecodeHash splits a PHC-encoded Argon2i hash into its parameters, salt and digest.
func DecodeHash(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	// "", "argon2i", "v=19", "m=..,t=..,p=..", salt, digest
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2i" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(digest))
	return p, salt, digest, nil
}
