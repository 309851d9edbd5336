package collector

import (
	"time"

	"github.com/LAIrfc/ai-trading-system/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Generated series are anchored to a fixed base date so repeated fetches
// are identical.
type MockFetcher struct {
	Price float64
	Data  []model.Bar
}

var _ Fetcher = (*MockFetcher)(nil)

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ string, days int) ([]model.Bar, error) {
	if m.Data != nil {
		if days > 0 && len(m.Data) > days {
			return m.Data[len(m.Data)-days:], nil
		}
		return m.Data, nil
	}
	return GenerateBars(m.Price, days), nil
}

// GenerateBars produces a deterministic gently-trending daily series.
func GenerateBars(basePrice float64, count int) []model.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
			Amount: p * 1000000,
			PETTM:  15 + float64(i%10)*0.1,
			PB:     1.5,
		}
	}
	return bars
}
