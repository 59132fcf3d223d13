package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementComplete(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := Settlement{Status: SettlementPending, Amount: 25}

	require.NoError(t, s.Complete(now))
	assert.Equal(t, SettlementCompleted, s.Status)
	require.NotNil(t, s.SettledAt)
	assert.Equal(t, now, *s.SettledAt)

	// Completing again is a no-op, not a double adjustment.
	later := now.Add(time.Hour)
	require.NoError(t, s.Complete(later))
	assert.Equal(t, now, *s.SettledAt)
}

func TestSettlementCancel(t *testing.T) {
	s := Settlement{Status: SettlementPending}

	require.NoError(t, s.Cancel())
	assert.Equal(t, SettlementCancelled, s.Status)
	assert.Nil(t, s.SettledAt)

	// Cancelling twice is harmless.
	require.NoError(t, s.Cancel())
}

func TestSettlementTerminalStates(t *testing.T) {
	completed := Settlement{Status: SettlementCompleted}
	assert.ErrorIs(t, completed.Cancel(), ErrSettlementFinal)

	cancelled := Settlement{Status: SettlementCancelled}
	assert.ErrorIs(t, cancelled.Complete(time.Now()), ErrSettlementFinal)
}
