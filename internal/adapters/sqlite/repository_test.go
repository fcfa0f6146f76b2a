package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...ports.Fields) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "trade-journal-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func ptr[T any](v T) *T { return &v }

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestRepository_CreateAndFindByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	entry := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(3 * time.Hour)

	tests := []struct {
		name  string
		trade *domain.Trade
	}{
		{
			name: "closed trade with every field",
			trade: &domain.Trade{
				Symbol:     "AAPL",
				Side:       domain.SideLong,
				Quantity:   10,
				EntryPrice: 100,
				EntryTime:  entry,
				ExitPrice:  ptr(110.0),
				ExitTime:   &exit,
				Fees:       ptr(2.0),
				Tags:       "strat, momentum",
				Notes:      "earnings gap",
			},
		},
		{
			name: "open trade without optional fields",
			trade: &domain.Trade{
				Symbol:     "TSLA",
				Side:       domain.SideShort,
				Quantity:   5,
				EntryPrice: 200,
				EntryTime:  entry,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.Create(ctx, tt.trade)
			require.NoError(t, err)
			assert.Greater(t, id, int64(0))
			assert.Equal(t, id, tt.trade.ID)

			found, err := repo.FindByID(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, found)

			assert.Equal(t, tt.trade.Symbol, found.Symbol)
			assert.Equal(t, tt.trade.Side, found.Side)
			assert.Equal(t, tt.trade.Quantity, found.Quantity)
			assert.Equal(t, tt.trade.EntryPrice, found.EntryPrice)
			assert.True(t, tt.trade.EntryTime.Equal(found.EntryTime))
			assert.Equal(t, tt.trade.ExitPrice, found.ExitPrice)
			assert.Equal(t, tt.trade.Fees, found.Fees)
			assert.Equal(t, tt.trade.Tags, found.Tags)
			assert.Equal(t, tt.trade.Notes, found.Notes)
			if tt.trade.ExitTime == nil {
				assert.Nil(t, found.ExitTime)
			} else {
				require.NotNil(t, found.ExitTime)
				assert.True(t, tt.trade.ExitTime.Equal(*found.ExitTime))
			}
		})
	}
}

func TestRepository_FindByID_Missing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	found, err := repo.FindByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_UpdateTrade(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	trade := &domain.Trade{
		Symbol:     "MSFT",
		Side:       domain.SideLong,
		Quantity:   3,
		EntryPrice: 300,
		EntryTime:  time.Date(2024, 2, 1, 15, 0, 0, 0, time.UTC),
	}
	_, err := repo.Create(ctx, trade)
	require.NoError(t, err)

	exit := trade.EntryTime.Add(24 * time.Hour)
	trade.ExitPrice = ptr(320.0)
	trade.ExitTime = &exit
	trade.Tags = "swing"
	require.NoError(t, repo.Update(ctx, trade))

	found, err := repo.FindByID(ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsClosed())
	assert.Equal(t, 320.0, *found.ExitPrice)
	assert.Equal(t, "swing", found.Tags)

	missing := *trade
	missing.ID = 999
	err = repo.Update(ctx, &missing)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteTrade(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	trade := &domain.Trade{Symbol: "NVDA", Side: domain.SideLong, Quantity: 1, EntryPrice: 50, EntryTime: time.Now()}
	id, err := repo.Create(ctx, trade)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, found)

	err = repo.Delete(ctx, id)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_FindAll(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, sym := range []string{"AAPL", "TSLA", "AMZN"} {
		_, err := repo.Create(ctx, &domain.Trade{Symbol: sym, Side: domain.SideLong, Quantity: 1, EntryPrice: 1, EntryTime: time.Now()})
		require.NoError(t, err)
	}

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "AAPL", all[0].Symbol)
	assert.Equal(t, "AMZN", all[2].Symbol)
	assert.Less(t, all[0].ID, all[1].ID)
}
