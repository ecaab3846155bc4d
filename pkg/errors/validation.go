package errors

import (
	"math/bits"
	"strings"
	"unicode"
)

// ValidateDensity checks that d lies in the half-open interval (0, 1].
// The generator name prefixes the message of the returned precondition error.
func ValidateDensity(generator string, d float64) error {
	if d <= 0 || d > 1 {
		return Precondition(generator, "density %v out of range (0, 1]", d)
	}
	return nil
}

// ValidatePortion checks that p lies in the closed interval [0, 1].
func ValidatePortion(generator, name string, p float64) error {
	if p < 0 || p > 1 {
		return Precondition(generator, "%s %v out of range [0, 1]", name, p)
	}
	return nil
}

// ValidatePowerOfTwo checks that n is a non-zero power of two.
func ValidatePowerOfTwo(generator string, n uint64) error {
	if n == 0 || bits.OnesCount64(n) != 1 {
		return Precondition(generator, "number of vertices must be a power of 2, got %d", n)
	}
	return nil
}

// ValidatePath validates an output or input file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.TrimSpace(path) != path {
		return New(ErrCodeInvalidPath, "path cannot start or end with whitespace")
	}

	return nil
}
