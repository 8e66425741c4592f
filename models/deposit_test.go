package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepositRotation_Advance(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		maxIndex int
		expected int
	}{
		{"middle of the pool", 2, 3, 3},
		{"wraps at the end", 3, 3, 1},
		{"single address", 1, 1, 1},
		{"cursor past a shrunk pool", 7, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rotation := &DepositRotation{CurrentIndex: tt.current}
			assert.Equal(t, tt.expected, rotation.Advance(tt.maxIndex))
		})
	}
}
