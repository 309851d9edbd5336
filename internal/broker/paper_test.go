package broker

import (
	"math"
	"testing"
)

func TestPaperAccount_BuyRejectsOddLots(t *testing.T) {
	a := NewPaperAccount(100000, 0.0003)

	for _, qty := range []int{0, -100, 50, 150} {
		if _, err := a.Buy("510300", 4.0, qty); err == nil {
			t.Errorf("buy of %d shares should be rejected", qty)
		}
	}
	if snap := a.Snapshot(); snap.Cash != 100000 {
		t.Errorf("rejected buys must not touch cash, got %.2f", snap.Cash)
	}
}

func TestPaperAccount_MinimumCommission(t *testing.T) {
	a := NewPaperAccount(100000, 0.0003)

	// 100 shares at 4 yuan is a 400-yuan notional whose percentage
	// commission (0.12) is far below the 5-yuan floor.
	if _, err := a.Buy("510300", 4.0, 100); err != nil {
		t.Fatal(err)
	}
	fills := a.Fills()
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if fills[0].Commission != 5.0 {
		t.Errorf("commission = %.2f, want the 5 yuan floor", fills[0].Commission)
	}
	if got, want := a.Snapshot().Cash, 100000-400-5.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("cash = %.2f, want %.2f", got, want)
	}
}

func TestPaperAccount_WeightedAverageCost(t *testing.T) {
	a := NewPaperAccount(1000000, 0.0003)

	if _, err := a.Buy("600519", 10.0, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Buy("600519", 14.0, 1000); err != nil {
		t.Fatal(err)
	}

	snap := a.Snapshot()
	if len(snap.Positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(snap.Positions))
	}
	pos := snap.Positions[0]
	if pos.Quantity != 2000 {
		t.Errorf("quantity = %d, want 2000", pos.Quantity)
	}
	if math.Abs(pos.CostPrice-12.0) > 1e-9 {
		t.Errorf("cost price = %.4f, want 12.0", pos.CostPrice)
	}
}

func TestPaperAccount_SellChecksHoldings(t *testing.T) {
	a := NewPaperAccount(100000, 0.0003)

	if _, err := a.Sell("510300", 4.0, 100); err == nil {
		t.Error("selling an unheld code should fail")
	}

	if _, err := a.Buy("510300", 4.0, 200); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Sell("510300", 4.0, 300); err == nil {
		t.Error("selling more than held should fail")
	}
	if _, err := a.Sell("510300", 4.0, 200); err != nil {
		t.Errorf("full sell should succeed: %v", err)
	}
	if got := len(a.Snapshot().Positions); got != 0 {
		t.Errorf("positions after liquidation = %d, want 0", got)
	}
}

func TestPaperAccount_SellAppliesStampTax(t *testing.T) {
	a := NewPaperAccount(1000000, 0.0003)

	if _, err := a.Buy("600519", 100.0, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Sell("600519", 100.0, 1000); err != nil {
		t.Fatal(err)
	}

	fills := a.Fills()
	if len(fills) != 2 {
		t.Fatalf("got %d fills, want 2", len(fills))
	}
	buy, sell := fills[0], fills[1]
	// Same notional, but the sell carries the 0.1% stamp tax on top.
	wantExtra := 100.0 * 1000 * 0.001
	if got := sell.Commission - buy.Commission; math.Abs(got-wantExtra) > 1e-9 {
		t.Errorf("sell commission exceeds buy by %.2f, want %.2f", got, wantExtra)
	}
}

func TestPaperAccount_SnapshotProfit(t *testing.T) {
	a := NewPaperAccount(100000, 0.0003)

	if _, err := a.Buy("510300", 10.0, 1000); err != nil {
		t.Fatal(err)
	}
	a.UpdatePrices(map[string]float64{"510300": 12.0})

	snap := a.Snapshot()
	if snap.MarketValue != 12000 {
		t.Errorf("market value = %.2f, want 12000", snap.MarketValue)
	}
	if snap.TotalProfit <= 0 {
		t.Errorf("total profit = %.2f, want positive after the mark-up", snap.TotalProfit)
	}
	if snap.FillCount != 1 {
		t.Errorf("fill count = %d, want 1", snap.FillCount)
	}
}

func TestPaperAccount_DistinctOrderIDs(t *testing.T) {
	a := NewPaperAccount(1000000, 0.0003)

	id1, err := a.Buy("510300", 4.0, 100)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := a.Buy("510300", 4.0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if id1 == "" || id1 == id2 {
		t.Errorf("order ids must be unique and non-empty: %q vs %q", id1, id2)
	}
}
