package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examprep_backend/internal/model"
)

func TestNewStateAtPrior(t *testing.T) {
	state := newStateAtPrior("s1", "kinematics", 0.25)

	assert.Equal(t, "s1", state.StudentID)
	assert.Equal(t, "kinematics", state.ConceptID)
	assert.Equal(t, 0.25, state.Mastery)
	assert.Zero(t, state.PracticeCount)
	assert.Zero(t, state.ConsecutiveIncorrect)
	assert.WithinDuration(t, time.Now(), state.LastPracticed, time.Second)
}

func TestApplyStateMutationPracticeCountNeverDecreases(t *testing.T) {
	state := model.KnowledgeState{StudentID: "s1", ConceptID: "c1", Mastery: 0.5, PracticeCount: 7}

	// 变更试图回拨计数，守护把它顶回原值
	err := applyStateMutation(&state, func(st *model.KnowledgeState) error {
		st.Mastery = 0.6
		st.PracticeCount = 3
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, state.PracticeCount)
	assert.Equal(t, 0.6, state.Mastery)

	// 正常递增不受影响
	err = applyStateMutation(&state, func(st *model.KnowledgeState) error {
		st.PracticeCount++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 8, state.PracticeCount)
}

func TestApplyStateMutationErrorRestoresState(t *testing.T) {
	state := model.KnowledgeState{StudentID: "s1", ConceptID: "c1", Mastery: 0.5, PracticeCount: 2, ConsecutiveIncorrect: 1}
	boom := errors.New("inconsistent params")

	err := applyStateMutation(&state, func(st *model.KnowledgeState) error {
		st.Mastery = 0.9
		st.PracticeCount = 99
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0.5, state.Mastery)
	assert.Equal(t, 2, state.PracticeCount)
	assert.Equal(t, 1, state.ConsecutiveIncorrect)
}
