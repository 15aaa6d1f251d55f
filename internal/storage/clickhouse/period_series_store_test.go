package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

func testPeriodPoint(slug, periodKey string, g domain.Granularity, v domain.Variant, segment domain.Segment) *domain.PeriodPoint {
	return &domain.PeriodPoint{
		EventSlug:   slug,
		Granularity: g,
		Variant:     v,
		PeriodKey:   periodKey,
		Segment:     segment,
		PeriodDem:   600,
		PeriodRep:   400,
		CumDem:      600,
		CumRep:      400,
		DemRatio:    ptr(0.6),
	}
}

func TestPeriodSeriesStore_InsertBulkAndGetBySeries(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPeriodSeriesStore(conn)
	ctx := context.Background()

	points := []*domain.PeriodPoint{
		testPeriodPoint("pres-2024", "2024-10-02", domain.GranularityDaily, domain.VariantCumulative, domain.SegmentSmall),
		testPeriodPoint("pres-2024", "2024-10-01", domain.GranularityDaily, domain.VariantCumulative, domain.SegmentAll),
		testPeriodPoint("pres-2024", "2024-10-01", domain.GranularityDaily, domain.VariantNonCumulative, domain.SegmentAll),
		testPeriodPoint("pres-2024", "2024-W40", domain.GranularityWeekly, domain.VariantCumulative, domain.SegmentAll),
		testPeriodPoint("other-event", "2024-10-01", domain.GranularityDaily, domain.VariantCumulative, domain.SegmentAll),
	}

	err := store.InsertBulk(ctx, points)
	require.NoError(t, err)

	got, err := store.GetBySeries(ctx, "pres-2024", domain.GranularityDaily, domain.VariantCumulative)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by (period_key ASC, segment ASC); other series filtered out
	assert.Equal(t, "2024-10-01", got[0].PeriodKey)
	assert.Equal(t, domain.SegmentAll, got[0].Segment)
	assert.Equal(t, "2024-10-02", got[1].PeriodKey)
	assert.Equal(t, domain.SegmentSmall, got[1].Segment)

	require.NotNil(t, got[0].DemRatio)
	assert.InDelta(t, 0.6, *got[0].DemRatio, 1e-9)
	assert.Equal(t, 600.0, got[0].CumDem)
}

func TestPeriodSeriesStore_NullRatioRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPeriodSeriesStore(conn)
	ctx := context.Background()

	p := testPeriodPoint("pres-2024", "2024-10-01", domain.GranularityDaily, domain.VariantNonCumulative, domain.SegmentAll)
	p.PeriodDem = 0
	p.PeriodRep = 0
	p.DemRatio = nil

	err := store.InsertBulk(ctx, []*domain.PeriodPoint{p})
	require.NoError(t, err)

	got, err := store.GetBySeries(ctx, "pres-2024", domain.GranularityDaily, domain.VariantNonCumulative)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].DemRatio)
}

func TestPeriodSeriesStore_InsertBulk_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPeriodSeriesStore(conn)
	ctx := context.Background()

	p := testPeriodPoint("pres-2024", "2024-10", domain.GranularityMonthly, domain.VariantCumulative, domain.SegmentAll)

	err := store.InsertBulk(ctx, []*domain.PeriodPoint{p})
	require.NoError(t, err)

	err = store.InsertBulk(ctx, []*domain.PeriodPoint{p})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPeriodSeriesStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPeriodSeriesStore(conn)
	ctx := context.Background()

	p := testPeriodPoint("pres-2024", "2024-10-01", domain.GranularityDaily, domain.VariantCumulative, domain.SegmentAll)

	err := store.InsertBulk(ctx, []*domain.PeriodPoint{p, p})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySeries(ctx, "pres-2024", domain.GranularityDaily, domain.VariantCumulative)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPeriodSeriesStore_InsertBulk_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPeriodSeriesStore(conn)

	p := testPeriodPoint("", "2024-10-01", domain.GranularityDaily, domain.VariantCumulative, domain.SegmentAll)
	err := store.InsertBulk(context.Background(), []*domain.PeriodPoint{p})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
