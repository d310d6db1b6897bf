package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransferGraphNeighbors(t *testing.T) {
	g, err := NewTransferGraph([]Edge{
		{From: "kinematics", To: "dynamics", Weight: 0.6},
		{From: "kinematics", To: "vectors", Weight: 0.3},
		{From: "dynamics", To: "kinematics", Weight: 0.4},
	})
	require.NoError(t, err)

	assert.Len(t, g.Neighbors("kinematics"), 2)
	assert.Len(t, g.Neighbors("dynamics"), 1)
	assert.Empty(t, g.Neighbors("unknown"))
	assert.Equal(t, 3, g.EdgeCount())
}

func TestNewTransferGraphRejectsBadEdges(t *testing.T) {
	_, err := NewTransferGraph([]Edge{{From: "a", To: "b", Weight: 1.5}})
	assert.Error(t, err)

	_, err = NewTransferGraph([]Edge{{From: "a", To: "a", Weight: 0.5}})
	assert.Error(t, err)

	_, err = NewTransferGraph([]Edge{{From: "", To: "b", Weight: 0.5}})
	assert.Error(t, err)
}

func TestHolderReplace(t *testing.T) {
	g1, err := NewTransferGraph(nil)
	require.NoError(t, err)
	h := NewHolder(g1)
	assert.Same(t, g1, h.Get())

	g2, err := NewTransferGraph([]Edge{{From: "a", To: "b", Weight: 0.2}})
	require.NoError(t, err)
	h.Replace(g2)
	assert.Same(t, g2, h.Get())
}
