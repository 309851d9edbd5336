package sweep

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"

	"github.com/LAIrfc/ai-trading-system/internal/backtest"
	"github.com/LAIrfc/ai-trading-system/internal/model"
	"github.com/LAIrfc/ai-trading-system/internal/strategy"
)

// Run is one strategy variant to evaluate over the series.
type Run struct {
	Name     string
	Strategy strategy.Strategy
}

// Outcome pairs a run with its backtest result.
type Outcome struct {
	Name   string
	Result *backtest.Result
}

// Sweep backtests every run over the same series using a bounded worker
// pool. Individual runs share nothing, so they execute concurrently without
// locking; outcomes come back in input order. Cancelling the context stops
// dispatching new runs and returns the context error.
func Sweep(ctx context.Context, engine *backtest.Engine, bars []model.Bar, runs []Run, workers int) ([]Outcome, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("sweep: no runs")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(runs) {
		workers = len(runs)
	}

	jobs := make(chan int)
	outcomes := make([]Outcome, len(runs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				r := runs[idx]
				outcomes[idx] = Outcome{Name: r.Name, Result: engine.Run(r.Strategy, bars)}
			}
		}()
	}

	var dispatchErr error
dispatch:
	for i := range runs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if dispatchErr != nil {
		log.Printf("[WARN] sweep cancelled: %v", dispatchErr)
		return nil, dispatchErr
	}
	return outcomes, nil
}

// SortByReturn orders outcomes best-first by total return, breaking ties by
// name so the ranking is stable.
func SortByReturn(outcomes []Outcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].Result.TotalReturn != outcomes[j].Result.TotalReturn {
			return outcomes[i].Result.TotalReturn > outcomes[j].Result.TotalReturn
		}
		return outcomes[i].Name < outcomes[j].Name
	})
}
