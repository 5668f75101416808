package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_state.json")
	store := NewFileStore(path)

	snap := domain.Snapshot{
		Account: domain.AccountState{
			StartBalance: 100_000,
			PeakBalance:  105_000,
			DailyPnL:     -1250,
			LastReset:    time.Date(2026, 3, 1, 0, 0, 5, 0, time.UTC),
		},
		Inventory: domain.InventoryState{
			YesContracts: 40,
			NoContracts:  38,
			AvgYesPrice:  46.5,
			AvgNoPrice:   51.0,
		},
	}
	require.NoError(t, store.Save(snap))

	got := store.Load()
	assert.Equal(t, snap.Account.StartBalance, got.Account.StartBalance)
	assert.Equal(t, snap.Account.DailyPnL, got.Account.DailyPnL)
	assert.True(t, snap.Account.LastReset.Equal(got.Account.LastReset))
	assert.Equal(t, snap.Inventory, got.Inventory)
	assert.False(t, got.SavedAt.IsZero())
}

func TestFileStore_MissingFileDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	got := store.Load()
	assert.Equal(t, domain.DefaultSnapshot(), got)
}

func TestFileStore_CorruptFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got := NewFileStore(path).Load()
	assert.Equal(t, domain.DefaultSnapshot(), got)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_state.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(domain.Snapshot{Account: domain.AccountState{DailyPnL: 1}}))
	require.NoError(t, store.Save(domain.Snapshot{Account: domain.AccountState{DailyPnL: 2}}))

	got := store.Load()
	assert.Equal(t, int64(2), got.Account.DailyPnL)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
