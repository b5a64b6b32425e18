/*
Package randx generates cryptographically secure identifiers.

It produces the stable user keys handed out at registration and the
per-connection session ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for key generation.
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// UserKeyLength is the fixed length of generated user keys.
	UserKeyLength = 21
)

var base62Len = big.NewInt(int64(len(Base62Chars)))

// UserKey generates a Base62 user key using crypto/rand. The key is the
// user's stable identity token and doubles as their private topic name.
func UserKey() (string, error) {
	result := make([]byte, UserKeyLength)

	for i := 0; i < UserKeyLength; i++ {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for user key: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// SessionID generates a UUID v4 string identifying one transport
// connection.
func SessionID() string {
	return uuid.New().String()
}
