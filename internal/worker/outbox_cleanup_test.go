package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-api/internal/repository/mocks"
	"github.com/jwalitptl/triage-api/pkg/logger"
	"github.com/jwalitptl/triage-api/pkg/metrics"
)

func TestOutboxCleanupWorker_Cleanup(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	w := NewOutboxCleanupWorker(repo, 7, time.Hour, logger.Nop(), metrics.Discard())
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	repo.On("DeleteProcessedBefore", mock.Anything, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)).
		Return(int64(12), nil)

	n, err := w.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	repo.AssertExpectations(t)
}

func TestOutboxCleanupWorker_CleanupError(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	w := NewOutboxCleanupWorker(repo, 1, time.Hour, logger.Nop(), metrics.Discard())

	repo.On("DeleteProcessedBefore", mock.Anything, mock.Anything).
		Return(int64(0), errors.New("timeout"))

	_, err := w.Cleanup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cleanup outbox events")
}
