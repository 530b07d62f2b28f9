package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Generator generates one-time passwords
type Generator struct {
	length int
}

// NewGenerator creates a new OTP generator
func NewGenerator(length int) *Generator {
	if length < 4 {
		length = 4
	}
	if length > 10 {
		length = 10
	}
	return &Generator{
		length: length,
	}
}

// Generate generates a random numeric OTP
func (g *Generator) Generate() (string, error) {
	max := new(big.Int)
	max.Exp(big.NewInt(10), big.NewInt(int64(g.length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	// Format with leading zeros to ensure exact length
	code := fmt.Sprintf("%0*d", g.length, n)
	return code, nil
}

// Length returns the configured code length
func (g *Generator) Length() int {
	return g.length
}

// Validate checks if the provided code matches the format
func (g *Generator) Validate(code string) bool {
	if len(code) != g.length {
		return false
	}

	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// Hash returns the SHA-256 hex digest of a code for storage and lookup
func Hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// NormalizeCode normalizes a code by removing spaces and separators
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, " ", "")
	code = strings.ReplaceAll(code, "-", "")
	return code
}

// MaskCode masks a code for inclusion in API responses and logs
func MaskCode(code string) string {
	return strings.Repeat("*", len(code))
}
