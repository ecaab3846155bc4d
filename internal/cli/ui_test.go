package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCount(t *testing.T) {
	tests := map[uint64]string{
		0:        "0",
		999:      "999",
		1047:     "1,047",
		16777216: "16,777,216",
	}
	for n, want := range tests {
		assert.Equal(t, want, formatCount(n))
	}
}
