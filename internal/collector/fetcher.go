package collector

import "github.com/LAIrfc/ai-trading-system/internal/model"

// Fetcher defines the interface for loading daily bar history.
type Fetcher interface {
	FetchDailyBars(code string, days int) ([]model.Bar, error)
	Name() string
}
