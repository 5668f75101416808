package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

type fakeMarketProvider struct {
	markets []domain.Market
	err     error
}

func (f *fakeMarketProvider) GetMarkets(_ context.Context, _ int, _ string) ([]domain.Market, error) {
	return f.markets, f.err
}

func (f *fakeMarketProvider) GetMarket(_ context.Context, id string) (domain.Market, error) {
	for _, m := range f.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Market{}, errors.New("not found")
}

func TestScanner_Scan_FiltersAndSorts(t *testing.T) {
	provider := &fakeMarketProvider{markets: []domain.Market{
		{ID: "thin", Volume: 500},
		{ID: "mid", Volume: 5000},
		{ID: "hot", Volume: 90000},
		{ID: "exact", Volume: 1000}, // at the floor, excluded
	}}

	s := New(Config{MinVolume: 1000, TopMarkets: 10}, provider)
	got, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "hot", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}

func TestScanner_Scan_TopMarketsCap(t *testing.T) {
	provider := &fakeMarketProvider{markets: []domain.Market{
		{ID: "a", Volume: 3000},
		{ID: "b", Volume: 4000},
		{ID: "c", Volume: 5000},
	}}

	s := New(Config{MinVolume: 1000, TopMarkets: 2}, provider)
	got, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestScanner_Scan_ProviderError(t *testing.T) {
	s := New(DefaultConfig(), &fakeMarketProvider{err: errors.New("boom")})
	_, err := s.Scan(context.Background())
	assert.Error(t, err)
}
