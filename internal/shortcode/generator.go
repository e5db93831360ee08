package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the 62-character alphanumeric set short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength gives 62^6 (about 56 billion) possible codes.
const DefaultLength = 6

// CodeGenerator produces candidate short codes. Uniqueness is not its concern.
type CodeGenerator interface {
	Generate() (string, error)
}

// Generator draws independent, uniformly random characters from Alphabet.
type Generator struct {
	length int
}

// NewGenerator creates a generator for codes of the given length.
// Lengths outside the valid short-code range fall back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length < 3 || length > 20 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Length returns the number of characters per code.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new random code. crypto/rand keeps codes hard to enumerate.
func (g *Generator) Generate() (string, error) {
	code := make([]byte, g.length)
	max := big.NewInt(int64(len(Alphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = Alphabet[n.Int64()]
	}
	return string(code), nil
}
