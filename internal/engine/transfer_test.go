package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferDelta(t *testing.T) {
	// p'_B = p_B + w * delta * factor
	assert.InDelta(t, 0.6*0.4*0.5, TransferDelta(0.6, 0.4, 0.5), 1e-9)
	// 负向变化同样传递
	assert.InDelta(t, 0.6*-0.2*0.5, TransferDelta(0.6, -0.2, 0.5), 1e-9)
	// 越界权重被钳制
	assert.InDelta(t, 1.0*0.4*0.5, TransferDelta(3, 0.4, 0.5), 1e-9)
	assert.Equal(t, 0.0, TransferDelta(-1, 0.4, 0.5))
}

func TestApplyTransferClamped(t *testing.T) {
	assert.Equal(t, 1.0, ApplyTransfer(0.95, 1, 1, 0.9))
	assert.Equal(t, 0.0, ApplyTransfer(0.05, 1, -1, 0.9))
	assert.InDelta(t, 0.5+0.6*0.3*0.5, ApplyTransfer(0.5, 0.6, 0.3, 0.5), 1e-9)
}
