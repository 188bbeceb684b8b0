package run

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalystlab/catalyst/internal/core"
)

func TestMemoryStore_RunLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateRun(ctx, Record{
		StrategyID:     "s1",
		StrategyName:   "momentum",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital: 100_000,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, rec.Status)
	assert.Equal(t, "momentum", rec.StrategyName)

	sharpe := 1.2
	err = store.UpdateRun(ctx, id, StatusCompleted, "", &Summary{
		FinalEquity:    112_000,
		TotalReturnPct: 12,
		TotalTrades:    8,
		WinRatePct:     62.5,
		MaxDrawdownPct: 4.2,
		SharpeRatio:    &sharpe,
	})
	require.NoError(t, err)

	rec, err = store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Empty(t, rec.Error)
	assert.Equal(t, 112_000.0, rec.FinalEquity)
	assert.Equal(t, 8, rec.TotalTrades)
	require.NotNil(t, rec.SharpeRatio)
	assert.Equal(t, 1.2, *rec.SharpeRatio)
}

func TestMemoryStore_FailedRun(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateRun(ctx, Record{StrategyName: "broken"})
	require.NoError(t, err)

	err = store.UpdateRun(ctx, id, StatusFailed, "no price data", nil)
	require.NoError(t, err)

	rec, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "no price data", rec.Error)
}

func TestMemoryStore_TradeResults(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateRun(ctx, Record{StrategyName: "momentum"})
	require.NoError(t, err)

	// Insert out of order; listing sorts by trade ID.
	require.NoError(t, store.SaveTradeResult(ctx, id, TradeResult{TradeID: 2, Ticker: "BBB"}))
	require.NoError(t, store.SaveTradeResult(ctx, id, TradeResult{TradeID: 1, Ticker: "AAA"}))

	rows, err := store.ListTradeResults(ctx, id)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].TradeID)
	assert.Equal(t, "AAA", rows[0].Ticker)
	assert.Equal(t, id, rows[0].RunID)
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrRunNotFound)

	err = store.UpdateRun(ctx, "missing", StatusFailed, "x", nil)
	assert.ErrorIs(t, err, core.ErrRunNotFound)

	err = store.SaveTradeResult(ctx, "missing", TradeResult{TradeID: 1})
	assert.ErrorIs(t, err, core.ErrRunNotFound)
}
