package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LAIrfc/ai-trading-system/internal/model"
)

// CSVFetcher loads daily bars from per-code CSV files under a directory,
// one file per instrument named <code>.csv.
//
// Expected header: date,open,high,low,close,volume plus optional amount,
// turnover_rate, pe_ttm, pb columns. Missing fundamental cells are forward
// filled from the previous row, matching how quote vendors publish PE/PB
// only on refresh days.
type CSVFetcher struct {
	Dir string
}

var _ Fetcher = (*CSVFetcher)(nil)

func NewCSVFetcher(dir string) *CSVFetcher { return &CSVFetcher{Dir: dir} }

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDailyBars(code string, days int) ([]model.Bar, error) {
	path := filepath.Join(f.Dir, code+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer file.Close()

	bars, err := ReadBars(file)
	if err != nil {
		return nil, fmt.Errorf("read bars for %s: %w", code, err)
	}
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// ReadBars parses a daily bar CSV, sorts ascending by date, rejects
// duplicate dates, and forward-fills missing fundamentals.
func ReadBars(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var bars []model.Bar
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		bar, err := parseBar(record, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Equal(bars[i-1].Date) {
			return nil, fmt.Errorf("duplicate date %s", bars[i].Date.Format("2006-01-02"))
		}
	}

	forwardFill(bars)
	return bars, nil
}

func parseBar(record []string, col map[string]int) (model.Bar, error) {
	field := func(name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse date: %w", err)
	}

	bar := model.Bar{Date: date}
	numeric := []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"open", &bar.Open, true},
		{"high", &bar.High, true},
		{"low", &bar.Low, true},
		{"close", &bar.Close, true},
		{"volume", &bar.Volume, true},
		{"amount", &bar.Amount, false},
		{"turnover_rate", &bar.TurnoverRate, false},
		{"pe_ttm", &bar.PETTM, false},
		{"pb", &bar.PB, false},
	}
	for _, n := range numeric {
		raw := field(n.name)
		if raw == "" {
			if n.required {
				return model.Bar{}, fmt.Errorf("empty %s", n.name)
			}
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("parse %s: %w", n.name, err)
		}
		*n.dst = v
	}
	return bar, nil
}

// forwardFill carries the last seen PE/PB forward over rows that lack them.
func forwardFill(bars []model.Bar) {
	lastPE, lastPB := 0.0, 0.0
	for i := range bars {
		if bars[i].PETTM != 0 {
			lastPE = bars[i].PETTM
		} else {
			bars[i].PETTM = lastPE
		}
		if bars[i].PB != 0 {
			lastPB = bars[i].PB
		} else {
			bars[i].PB = lastPB
		}
	}
}
