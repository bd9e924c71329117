package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *mockOutboxRepo) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *mockOutboxRepo) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *mockOutboxRepo) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]*shared.OutboxEntry), args.Get(1).(int64), args.Error(2)
}

func (m *mockOutboxRepo) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.OutboxEntry), args.Error(1)
}

func (m *mockOutboxRepo) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *mockOutboxRepo) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockOutboxRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOutboxRepo) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[shared.OutboxStatus]int64), args.Error(1)
}

func deadEntry() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		EventID:       uuid.New(),
		EventType:     "OrderPlaced",
		AggregateID:   uuid.New(),
		AggregateType: "Order",
		Status:        shared.OutboxStatusDead,
		RetryCount:    5,
		MaxRetries:    5,
		LastError:     "handler failed",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestOutboxService_GetDeadLetterEntries(t *testing.T) {
	repo := new(mockOutboxRepo)
	service := NewOutboxService(repo, zap.NewNop())
	ctx := context.Background()

	entries := []*shared.OutboxEntry{deadEntry(), deadEntry()}
	repo.On("FindDead", ctx, 2, 2).Return(entries, int64(5), nil)

	result, err := service.GetDeadLetterEntries(ctx, OutboxFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "DEAD", result.Entries[0].Status)
	assert.Equal(t, entries[0].StoreID, result.Entries[0].StoreID)
	repo.AssertExpectations(t)
}

func TestOutboxService_GetDeadLetterEntries_Defaults(t *testing.T) {
	repo := new(mockOutboxRepo)
	service := NewOutboxService(repo, nil)
	ctx := context.Background()

	repo.On("FindDead", ctx, 1, 20).Return([]*shared.OutboxEntry{}, int64(0), nil)

	result, err := service.GetDeadLetterEntries(ctx, OutboxFilter{})
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Equal(t, 0, result.TotalPages)
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("resets a dead entry", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		service := NewOutboxService(repo, zap.NewNop())
		entry := deadEntry()
		repo.On("FindByID", ctx, entry.ID).Return(entry, nil)
		repo.On("Update", ctx, entry).Return(nil)

		result, err := service.RetryDeadEntry(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", result.Status)
		assert.Zero(t, result.RetryCount)
		assert.Empty(t, result.LastError)
		repo.AssertExpectations(t)
	})

	t.Run("unknown entry is not found", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		service := NewOutboxService(repo, zap.NewNop())
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.RetryDeadEntry(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("pending entry cannot be retried", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		service := NewOutboxService(repo, zap.NewNop())
		entry := deadEntry()
		entry.Status = shared.OutboxStatusPending
		repo.On("FindByID", ctx, entry.ID).Return(entry, nil)

		_, err := service.RetryDeadEntry(ctx, entry.ID)
		assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestOutboxService_RetryAllDeadEntries(t *testing.T) {
	ctx := context.Background()
	repo := new(mockOutboxRepo)
	service := NewOutboxService(repo, zap.NewNop())

	batch := []*shared.OutboxEntry{deadEntry(), deadEntry(), deadEntry()}
	repo.On("FindDead", ctx, 1, retryBatchSize).Return(batch, int64(3), nil).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*shared.OutboxEntry")).Return(nil).Times(3)

	count, err := service.RetryAllDeadEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	for _, e := range batch {
		assert.Equal(t, shared.OutboxStatusPending, e.Status)
	}
	repo.AssertExpectations(t)
}

func TestOutboxService_RetryAllDeadEntries_StopsOnRepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockOutboxRepo)
	service := NewOutboxService(repo, zap.NewNop())
	boom := errors.New("db down")

	repo.On("FindDead", ctx, 1, retryBatchSize).Return([]*shared.OutboxEntry{}, int64(0), boom)

	count, err := service.RetryAllDeadEntries(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, count)
}

func TestOutboxService_GetStats(t *testing.T) {
	ctx := context.Background()
	repo := new(mockOutboxRepo)
	service := NewOutboxService(repo, zap.NewNop())

	repo.On("CountByStatus", ctx).Return(map[shared.OutboxStatus]int64{
		shared.OutboxStatusPending:    2,
		shared.OutboxStatusProcessing: 1,
		shared.OutboxStatusSent:       3,
		shared.OutboxStatusFailed:     1,
		shared.OutboxStatusDead:       1,
	}, nil)

	stats, err := service.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Processing)
	assert.Equal(t, int64(3), stats.Sent)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Dead)
	assert.Equal(t, int64(8), stats.Total)
}

func TestOutboxService_PurgeSent(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes entries older than the cutoff", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		repo.On("DeleteOlderThan", ctx, mock.MatchedBy(func(before time.Time) bool {
			return time.Since(before) >= 48*time.Hour && time.Since(before) < 49*time.Hour
		})).Return(int64(7), nil)

		n, err := NewOutboxService(repo, zap.NewNop()).PurgeSent(ctx, 48*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a cutoff inside the minimum age", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		_, err := NewOutboxService(repo, nil).PurgeSent(ctx, time.Minute)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
		repo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
	})
}

func TestOutboxEntryDTO_Payload(t *testing.T) {
	entry := deadEntry()
	entry.Payload = []byte(`{"order_number":"ORD-20261019-00001"}`)
	assert.JSONEq(t, `{"order_number":"ORD-20261019-00001"}`, string(toOutboxEntryDTO(entry).Payload))

	entry.Payload = []byte(`not json`)
	assert.Nil(t, toOutboxEntryDTO(entry).Payload)
}
