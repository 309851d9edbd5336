package backtest

import (
	"fmt"
	"math"

	"github.com/LAIrfc/ai-trading-system/internal/model"
	"github.com/LAIrfc/ai-trading-system/internal/strategy"
)

// A-share market constants.
const (
	lotSize = 100 // board lot, the minimum tradable share quantity

	// maxWeight caps any buy at 95% of equity so commission never pushes
	// the cash balance negative.
	maxWeight = 0.95

	// dustWeight is the target weight below which a sell liquidates the
	// whole position instead of leaving a sub-lot remainder.
	dustWeight = 0.05
)

// Config holds the account and risk parameters of one simulation.
// A risk percentage of zero disables that control.
type Config struct {
	InitialCash    float64 // default 100000
	CommissionRate float64 // both sides, default 0.0002
	StampTaxRate   float64 // sell side only, default 0.001

	StopLossPct     float64 // hard stop vs average cost
	TrailingStopPct float64 // drawdown from the peak since entry
	TakeProfitPct   float64 // gain vs average cost
}

// Result is the summary of one walk-forward run. Percentages are in percent
// units rounded to two decimals, matching the report layer.
type Result struct {
	Trades           []model.TradeRecord
	FinalValue       float64
	TotalReturn      float64
	AnnualizedReturn float64
	MaxDrawdown      float64
	WinRate          float64 // share of profitable SELL trades
	TradeCount       int     // completed round trips, counted by SELL
	Sharpe           float64
	EquityCurve      []float64
}

// Engine replays a strategy over a daily bar series, one day at a time,
// with A-share trading frictions and layered risk controls.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration and creates an engine. Engines are
// stateless across runs and safe to reuse.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.InitialCash == 0 {
		cfg.InitialCash = 100000
	}
	if cfg.InitialCash < 0 {
		return nil, fmt.Errorf("backtest: initial cash must be positive, got %.2f", cfg.InitialCash)
	}
	if cfg.CommissionRate < 0 || cfg.CommissionRate >= 1 {
		return nil, fmt.Errorf("backtest: commission rate out of range: %.4f", cfg.CommissionRate)
	}
	if cfg.StampTaxRate < 0 || cfg.StampTaxRate >= 1 {
		return nil, fmt.Errorf("backtest: stamp tax rate out of range: %.4f", cfg.StampTaxRate)
	}
	if cfg.StopLossPct < 0 || cfg.TrailingStopPct < 0 || cfg.TakeProfitPct < 0 {
		return nil, fmt.Errorf("backtest: risk thresholds must be >= 0")
	}
	return &Engine{cfg: cfg}, nil
}

// account is the simulated position state. It is owned exclusively by one
// in-flight Run call, so no locking is needed.
type account struct {
	cash        float64
	shares      int
	avgBuyPrice float64 // cost-weighted average over all held lots
	peakPrice   float64 // highest close since the position was opened
}

func (a *account) equityAt(price float64) float64 {
	return a.cash + float64(a.shares)*price
}

func (a *account) resetCostBasis() {
	a.avgBuyPrice = 0
	a.peakPrice = 0
}

// Run replays the strategy over the series and returns the trade log and
// performance summary. A series shorter than the strategy's minimum history
// yields a zero-activity result, not an error. Runs are deterministic: the
// same strategy, configuration and series always produce identical results.
func (e *Engine) Run(s strategy.Strategy, bars []model.Bar) *Result {
	minBars := s.MinBars()
	if len(bars) == 0 || len(bars) <= minBars {
		return &Result{FinalValue: e.cfg.InitialCash}
	}

	acct := account{cash: e.cfg.InitialCash}
	var trades []model.TradeRecord
	equityCurve := make([]float64, 0, len(bars)-minBars)

	for i := minBars; i < len(bars); i++ {
		bar := bars[i]
		close := bar.Close
		equity := acct.equityAt(close)

		// Risk controls run before the strategy sees the day. First
		// match wins and pre-empts the signal, so there is no same-day
		// re-entry after a forced exit.
		if acct.shares > 0 {
			if reason, hit := e.checkRisk(&acct, close); hit {
				pnl := pnlPct(close, acct.avgBuyPrice)
				sold := acct.shares
				acct.cash += float64(sold) * close * (1 - e.cfg.CommissionRate - e.cfg.StampTaxRate)
				acct.shares = 0
				acct.resetCostBasis()
				trades = append(trades, model.TradeRecord{
					Date:        bar.Date,
					Action:      model.ActionSell,
					Price:       close,
					Shares:      sold,
					TotalShares: 0,
					PnlPct:      round2(pnl),
					Reason:      "[风控] " + reason,
				})
				equityCurve = append(equityCurve, acct.equityAt(close))
				continue
			}
		}

		sig := strategy.SafeAnalyze(s, bars[:i+1])

		switch {
		case sig.Action == model.ActionBuy:
			if t, ok := e.executeBuy(&acct, bar, equity, sig); ok {
				trades = append(trades, t)
			}
		case sig.Action == model.ActionSell && acct.shares > 0:
			if t, ok := e.executeSell(&acct, bar, equity, sig); ok {
				trades = append(trades, t)
			}
		}

		equityCurve = append(equityCurve, acct.equityAt(close))
	}

	return e.summarize(bars, minBars, trades, equityCurve, acct)
}

// checkRisk evaluates the exit controls in priority order: hard stop-loss,
// trailing stop, take-profit. The peak is refreshed before the trailing
// test so an intraday new high on the trigger day still counts.
func (e *Engine) checkRisk(acct *account, close float64) (string, bool) {
	pnl := (close - acct.avgBuyPrice) / acct.avgBuyPrice

	if e.cfg.StopLossPct > 0 && pnl <= -e.cfg.StopLossPct {
		return fmt.Sprintf("硬止损触发(亏损%.1f%%≤-%.0f%%)",
			pnl*100, e.cfg.StopLossPct*100), true
	}

	if close > acct.peakPrice {
		acct.peakPrice = close
	}
	if e.cfg.TrailingStopPct > 0 && acct.peakPrice > acct.avgBuyPrice {
		fromPeak := (acct.peakPrice - close) / acct.peakPrice
		if fromPeak >= e.cfg.TrailingStopPct {
			return fmt.Sprintf("跟踪止损触发(从最高%.2f回撤%.1f%%≥%.0f%%)",
				acct.peakPrice, fromPeak*100, e.cfg.TrailingStopPct*100), true
		}
	}

	if e.cfg.TakeProfitPct > 0 && pnl >= e.cfg.TakeProfitPct {
		return fmt.Sprintf("止盈触发(盈利%.1f%%≥%.0f%%)",
			pnl*100, e.cfg.TakeProfitPct*100), true
	}

	return "", false
}

// executeBuy sizes toward the signal's target weight and adds whole lots.
// An unaffordable or sub-lot delta is a silent no-op, never an error.
func (e *Engine) executeBuy(acct *account, bar model.Bar, equity float64, sig model.Signal) (model.TradeRecord, bool) {
	close := bar.Close
	targetWeight := math.Min(maxWeight, sig.Position)
	targetValue := equity * targetWeight
	delta := targetValue - float64(acct.shares)*close

	oneLotValue := float64(lotSize) * close
	if delta < oneLotValue {
		return model.TradeRecord{}, false
	}

	addShares := int(delta/close/lotSize) * lotSize
	cost := float64(addShares) * close * (1 + e.cfg.CommissionRate)
	if addShares <= 0 || cost > acct.cash {
		return model.TradeRecord{}, false
	}

	fresh := acct.shares == 0
	acct.avgBuyPrice = (acct.avgBuyPrice*float64(acct.shares) + close*float64(addShares)) /
		float64(acct.shares+addShares)
	acct.shares += addShares
	acct.cash -= cost
	if fresh || close > acct.peakPrice {
		acct.peakPrice = close
	}

	return model.TradeRecord{
		Date:        bar.Date,
		Action:      model.ActionBuy,
		Price:       close,
		Shares:      addShares,
		TotalShares: acct.shares,
		Reason:      sig.Reason,
	}, true
}

// executeSell trims toward the target weight in whole lots. A target weight
// under dustWeight, or a remainder below one lot, liquidates everything.
func (e *Engine) executeSell(acct *account, bar model.Bar, equity float64, sig model.Signal) (model.TradeRecord, bool) {
	close := bar.Close
	targetWeight := math.Max(0, sig.Position)
	targetValue := equity * targetWeight
	delta := float64(acct.shares)*close - targetValue

	sellShares := int(delta/close/lotSize) * lotSize
	if targetWeight < dustWeight || acct.shares-sellShares < lotSize {
		sellShares = acct.shares
	}
	if sellShares > acct.shares {
		sellShares = acct.shares
	}
	if sellShares <= 0 {
		return model.TradeRecord{}, false
	}

	pnl := pnlPct(close, acct.avgBuyPrice)
	acct.cash += float64(sellShares) * close * (1 - e.cfg.CommissionRate - e.cfg.StampTaxRate)
	acct.shares -= sellShares
	if acct.shares == 0 {
		acct.resetCostBasis()
	}

	return model.TradeRecord{
		Date:        bar.Date,
		Action:      model.ActionSell,
		Price:       close,
		Shares:      sellShares,
		TotalShares: acct.shares,
		PnlPct:      round2(pnl),
		Reason:      sig.Reason,
	}, true
}

func (e *Engine) summarize(bars []model.Bar, minBars int, trades []model.TradeRecord, equityCurve []float64, acct account) *Result {
	finalValue := acct.equityAt(bars[len(bars)-1].Close)
	totalReturn := (finalValue/e.cfg.InitialCash - 1) * 100

	// Annualize over elapsed calendar days. The floor keeps very short
	// windows from exploding the exponent.
	days := bars[len(bars)-1].Date.Sub(bars[minBars].Date).Hours() / 24
	years := math.Max(days/365.0, 0.01)
	annualized := (math.Pow(finalValue/e.cfg.InitialCash, 1/years) - 1) * 100

	maxDD := maxDrawdown(equityCurve)

	var sells, wins int
	for _, t := range trades {
		if t.Action == model.ActionSell {
			sells++
			if t.PnlPct > 0 {
				wins++
			}
		}
	}
	winRate := 0.0
	if sells > 0 {
		winRate = float64(wins) / float64(sells) * 100
	}

	return &Result{
		Trades:           trades,
		FinalValue:       round2(finalValue),
		TotalReturn:      round2(totalReturn),
		AnnualizedReturn: round2(annualized),
		MaxDrawdown:      round2(maxDD),
		WinRate:          round2(winRate),
		TradeCount:       sells,
		Sharpe:           round2(sharpe(equityCurve)),
		EquityCurve:      equityCurve,
	}
}

// maxDrawdown returns the largest peak-to-trough decline in percent.
func maxDrawdown(equityCurve []float64) float64 {
	if len(equityCurve) == 0 {
		return 0
	}
	peak := equityCurve[0]
	maxDD := 0.0
	for _, eq := range equityCurve {
		if eq > peak {
			peak = eq
		}
		if dd := (peak - eq) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

// sharpe annualizes mean over sample standard deviation of daily equity
// returns by sqrt(252) trading days. Zero-variance curves score zero.
func sharpe(equityCurve []float64) float64 {
	if len(equityCurve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		returns = append(returns, equityCurve[i]/equityCurve[i-1]-1)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	if len(returns) < 2 {
		return 0
	}
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}

func pnlPct(close, avgBuyPrice float64) float64 {
	if avgBuyPrice == 0 {
		return 0
	}
	return (close - avgBuyPrice) / avgBuyPrice * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
