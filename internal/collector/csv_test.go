package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `date,open,high,low,close,volume,amount,turnover_rate,pe_ttm,pb
2024-01-04,10.2,10.5,10.1,10.4,120000,1248000,1.2,,
2024-01-02,10.0,10.3,9.9,10.2,100000,1020000,1.0,15.2,1.6
2024-01-03,10.2,10.4,10.0,10.1,90000,909000,0.9,,
2024-01-05,10.4,10.6,10.3,10.5,130000,1365000,1.3,15.8,1.7
`

func TestReadBars_SortAndForwardFill(t *testing.T) {
	bars, err := ReadBars(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 4 {
		t.Fatalf("got %d bars, want 4", len(bars))
	}

	// Rows arrive shuffled; output must be date-ascending.
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			t.Fatalf("bars not ascending at %d: %v then %v", i, bars[i-1].Date, bars[i].Date)
		}
	}
	if bars[0].Date.Format("2006-01-02") != "2024-01-02" {
		t.Errorf("first bar = %s, want 2024-01-02", bars[0].Date.Format("2006-01-02"))
	}

	// PE/PB published on Jan 2 carries through the empty Jan 3 and 4 cells.
	if bars[1].PETTM != 15.2 || bars[2].PETTM != 15.2 {
		t.Errorf("PE not forward-filled: %.2f / %.2f", bars[1].PETTM, bars[2].PETTM)
	}
	if bars[3].PETTM != 15.8 {
		t.Errorf("fresh PE should win over the fill: %.2f", bars[3].PETTM)
	}
	if bars[2].PB != 1.6 {
		t.Errorf("PB not forward-filled: %.2f", bars[2].PB)
	}
}

func TestReadBars_DuplicateDateRejected(t *testing.T) {
	csv := `date,open,high,low,close,volume
2024-01-02,10,10,10,10,100
2024-01-02,11,11,11,11,100
`
	if _, err := ReadBars(strings.NewReader(csv)); err == nil {
		t.Error("expected duplicate date error")
	}
}

func TestReadBars_MissingColumnRejected(t *testing.T) {
	csv := `date,open,high,low,volume
2024-01-02,10,10,10,100
`
	if _, err := ReadBars(strings.NewReader(csv)); err == nil {
		t.Error("expected missing close column error")
	}
}

func TestReadBars_EmptyFileRejected(t *testing.T) {
	csv := "date,open,high,low,close,volume\n"
	if _, err := ReadBars(strings.NewReader(csv)); err == nil {
		t.Error("expected no-rows error")
	}
}

func TestCSVFetcher_TailWindow(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "510300.csv"), []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewCSVFetcher(dir)
	bars, err := f.FetchDailyBars("510300", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want the last 2", len(bars))
	}
	if bars[1].Date.Format("2006-01-02") != "2024-01-05" {
		t.Errorf("last bar = %s, want 2024-01-05", bars[1].Date.Format("2006-01-02"))
	}

	if _, err := f.FetchDailyBars("nonexistent", 10); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestMockFetcher_Deterministic(t *testing.T) {
	m := &MockFetcher{Price: 10}
	a, err := m.FetchDailyBars("any", 80)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.FetchDailyBars("any", 80)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 80 || len(b) != 80 {
		t.Fatalf("got %d/%d bars, want 80", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs between fetches", i)
		}
	}
}
