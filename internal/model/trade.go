package model

import "time"

// TradeRecord is one executed simulated trade. A backtest run produces an
// append-only, date-ordered list of these.
type TradeRecord struct {
	Date        time.Time
	Action      Action
	Price       float64
	Shares      int
	TotalShares int     // total shares held after this trade
	PnlPct      float64 // SELL only, percentage vs average buy price
	Reason      string
}
