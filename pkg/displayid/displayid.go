// Package displayid mints the short codes customers and staff read aloud.
package displayid

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in every code.
const Length = 8

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generate returns an 8-character uppercase alphanumeric code taken from the
// low base-36 digits of a random v4 UUID. Collisions are not checked.
func Generate() string {
	id := uuid.New()
	digits := strings.ToUpper(new(big.Int).SetBytes(id[:]).Text(36))
	if len(digits) >= Length {
		return digits[len(digits)-Length:]
	}
	return strings.Repeat("0", Length-len(digits)) + digits
}

// Valid reports whether code has the shape Generate produces.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
