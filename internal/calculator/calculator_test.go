package calculator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	got, err := SMA(prices, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(got, 4) {
		t.Errorf("SMA(3) = %.4f, want 4", got)
	}

	if _, err := SMA(prices, 10); err == nil {
		t.Error("expected error for period longer than data")
	}
	if _, err := SMA(prices, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestEMASeries(t *testing.T) {
	prices := []float64{10, 11, 12}
	ema := EMASeries(prices, 3) // alpha = 0.5

	if !almostEqual(ema[0], 10) {
		t.Errorf("ema[0] = %.4f, want seed 10", ema[0])
	}
	if !almostEqual(ema[1], 10.5) {
		t.Errorf("ema[1] = %.4f, want 10.5", ema[1])
	}
	if !almostEqual(ema[2], 11.25) {
		t.Errorf("ema[2] = %.4f, want 11.25", ema[2])
	}
}

func TestMomentum(t *testing.T) {
	prices := []float64{10, 10, 10, 12}
	got, err := Momentum(prices, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(got, 20) {
		t.Errorf("momentum = %.4f%%, want 20%%", got)
	}
}

func TestRSI_Extremes(t *testing.T) {
	up := make([]float64, 30)
	for i := range up {
		up[i] = 10 + float64(i)
	}
	got, err := RSI(up, 14)
	if err != nil {
		t.Fatal(err)
	}
	if got != 100 {
		t.Errorf("RSI of straight gains = %.2f, want 100", got)
	}

	down := make([]float64, 30)
	for i := range down {
		down[i] = 40 - float64(i)
	}
	got, err = RSI(down, 14)
	if err != nil {
		t.Fatal(err)
	}
	if got > 1 {
		t.Errorf("RSI of straight losses = %.2f, want near 0", got)
	}
}

func TestRSI_InsufficientDataDefaultsNeutral(t *testing.T) {
	got, err := RSI([]float64{10, 11, 12}, 14)
	if err != nil {
		t.Fatal(err)
	}
	if got != 50 {
		t.Errorf("RSI with short data = %.2f, want neutral 50", got)
	}
}

func TestMACD_FlatSeriesIsZero(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 10
	}
	dif, dea := MACD(prices, 12, 26, 9)
	last := len(prices) - 1
	if !almostEqual(dif[last], 0) || !almostEqual(dea[last], 0) {
		t.Errorf("flat series: dif=%.6f dea=%.6f, want 0/0", dif[last], dea[last])
	}
}

func TestStdDev_Sample(t *testing.T) {
	// Sample (n-1) standard deviation of 2,4,4,4,5,5,7,9 is sqrt(32/7).
	got, err := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if err != nil {
		t.Fatal(err)
	}
	want := math.Sqrt(32.0 / 7.0)
	if !almostEqual(got, want) {
		t.Errorf("stddev = %.6f, want %.6f", got, want)
	}

	if _, err := StdDev([]float64{1}); err == nil {
		t.Error("expected error for a single value")
	}
}

func TestBollinger(t *testing.T) {
	prices := []float64{10, 10, 10, 10, 10, 12, 8, 12, 8, 10}
	mid, upper, lower, err := Bollinger(prices, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(mid, 10) {
		t.Errorf("mid = %.4f, want 10", mid)
	}
	if upper <= mid || lower >= mid {
		t.Errorf("bands not around the mid: %.4f / %.4f / %.4f", lower, mid, upper)
	}
	if !almostEqual(upper-mid, mid-lower) {
		t.Error("bands should be symmetric around the mid")
	}
}

func TestDiffs(t *testing.T) {
	got := Diffs([]float64{1, 3, 6, 10})
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("diffs[%d] = %.4f, want %.4f", i, got[i], want[i])
		}
	}
}
