package isg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemporalMatrixRejectsBothFalse(t *testing.T) {
	ts := TemporalState{CurrentInd: false, FutureInd: false, Action: ActionNone}
	assert.Error(t, ts.Validate())
}

func TestTemporalEditScenario(t *testing.T) {
	// Matches spec's "Temporal edit" end-to-end scenario: fn f(){} ingested,
	// then Modify with proposed_code.
	ts := InitialState()
	require.NoError(t, ts.Validate())

	next, err := ApplyChange(ts, ActionEdit)
	require.NoError(t, err)
	assert.Equal(t, TemporalState{CurrentInd: true, FutureInd: true, Action: ActionEdit}, next)
}

func TestApplyChangeDeleteFromUnchanged(t *testing.T) {
	ts := Unchanged()
	next, err := ApplyChange(ts, ActionDelete)
	require.NoError(t, err)
	assert.Equal(t, DeleteState(), next)
}

func TestApplyChangeCreate(t *testing.T) {
	next, err := ApplyChange(TemporalState{}, ActionCreate)
	require.NoError(t, err)
	assert.Equal(t, CreateState(), next)
}
