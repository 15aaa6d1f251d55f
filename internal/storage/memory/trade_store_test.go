package memory

import (
	"context"
	"errors"
	"testing"

	"election-market-lab/internal/domain"
	"election-market-lab/internal/storage"
)

func rawTrade(id, marketID string) *domain.RawTrade {
	return &domain.RawTrade{
		TradeID:        id,
		MarketID:       marketID,
		Timestamp:      "2024-10-01 12:00:00",
		Maker:          "0xaaa",
		Taker:          "0xbbb",
		NonUSDCSide:    domain.TokenSideYes,
		MakerDirection: domain.DirectionBuy,
		TakerDirection: domain.DirectionSell,
		TokenAmount:    100,
		USDAmount:      55,
	}
}

func TestTradeStore_InsertBulkAndGet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trades := []*domain.RawTrade{
		rawTrade("t2", "market-a"),
		rawTrade("t1", "market-a"),
		rawTrade("t3", "market-b"),
	}

	if err := store.InsertBulk(ctx, trades); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByMarketID(ctx, "market-a")
	if err != nil {
		t.Fatalf("GetByMarketID failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(result))
	}
	if result[0].TradeID != "t1" || result[1].TradeID != "t2" {
		t.Errorf("Expected trade_id ASC order, got %s, %s", result[0].TradeID, result[1].TradeID)
	}
}

func TestTradeStore_DuplicateFailsBatch(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.RawTrade{rawTrade("t1", "m")}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.RawTrade{rawTrade("t2", "m"), rawTrade("t1", "m")})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// Batch atomicity: t2 must not have been inserted.
	result, err := store.GetByMarketID(ctx, "m")
	if err != nil {
		t.Fatalf("GetByMarketID failed: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("Expected 1 trade after failed batch, got %d", len(result))
	}
}

func TestTradeStore_IntraBatchDuplicate(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.RawTrade{rawTrade("t1", "m"), rawTrade("t1", "m")})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}
}

func TestTradeStore_ListMarkets(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trades := []*domain.RawTrade{
		rawTrade("t1", "zebra"),
		rawTrade("t2", "alpha"),
		rawTrade("t3", "alpha"),
	}
	if err := store.InsertBulk(ctx, trades); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	markets, err := store.ListMarkets(ctx)
	if err != nil {
		t.Fatalf("ListMarkets failed: %v", err)
	}
	if len(markets) != 2 || markets[0] != "alpha" || markets[1] != "zebra" {
		t.Errorf("Expected [alpha zebra], got %v", markets)
	}
}

func TestTradeStore_InvalidInput(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.RawTrade{{TradeID: "", MarketID: "m"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestTradeStore_CopyOnRead(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.RawTrade{rawTrade("t1", "m")}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	first, _ := store.GetByMarketID(ctx, "m")
	first[0].USDAmount = 999

	second, _ := store.GetByMarketID(ctx, "m")
	if second[0].USDAmount != 55 {
		t.Errorf("Mutating a read result leaked into the store")
	}
}
