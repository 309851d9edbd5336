package broker

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// A-share trading frictions applied by the paper account.
const (
	minCommission = 5.0   // exchanges charge at least 5 yuan per fill
	stampTaxRate  = 0.001 // sell side only
)

// Position is one open holding with its running cost basis.
type Position struct {
	Code         string
	Quantity     int
	CostPrice    float64 // cost-weighted average over all fills
	CurrentPrice float64
}

// MarketValue is the position's worth at the last known price.
func (p Position) MarketValue() float64 { return float64(p.Quantity) * p.CurrentPrice }

// Profit is the unrealized gain versus cost.
func (p Position) Profit() float64 { return p.MarketValue() - float64(p.Quantity)*p.CostPrice }

// ProfitPct is the unrealized gain in percent of cost.
func (p Position) ProfitPct() float64 {
	cost := float64(p.Quantity) * p.CostPrice
	if cost == 0 {
		return 0
	}
	return p.Profit() / cost * 100
}

// Fill is one executed paper order.
type Fill struct {
	OrderID    string
	Code       string
	Side       Side
	Price      float64
	Quantity   int
	Amount     float64
	Commission float64 // includes stamp tax on sells
	Time       time.Time
}

// AccountSnapshot is a point-in-time view of the paper account.
type AccountSnapshot struct {
	InitialCapital float64
	Cash           float64
	MarketValue    float64
	TotalAssets    float64
	TotalProfit    float64
	TotalProfitPct float64
	Positions      []Position
	FillCount      int
}

// PaperAccount simulates an A-share cash account with board-lot checks,
// commission with a 5 yuan floor, and sell-side stamp tax. Fills are
// immediate at the submitted price. Safe for concurrent use.
type PaperAccount struct {
	mu             sync.Mutex
	initialCapital float64
	cash           float64
	commissionRate float64
	positions      map[string]*Position
	fills          []Fill
}

var _ Broker = (*PaperAccount)(nil)

// NewPaperAccount creates a paper account. Zero values take the usual
// defaults: 100000 yuan starting cash and a 0.03% commission rate.
func NewPaperAccount(initialCapital, commissionRate float64) *PaperAccount {
	if initialCapital == 0 {
		initialCapital = 100000
	}
	if commissionRate == 0 {
		commissionRate = 0.0003
	}
	log.Printf("[INFO] paper account created, initial capital: %.2f", initialCapital)
	return &PaperAccount{
		initialCapital: initialCapital,
		cash:           initialCapital,
		commissionRate: commissionRate,
		positions:      make(map[string]*Position),
	}
}

func (a *PaperAccount) Name() string { return "paper" }

// Buy fills a board-lot buy order immediately if cash covers notional plus
// commission.
func (a *PaperAccount) Buy(code string, price float64, quantity int) (string, error) {
	if quantity <= 0 || quantity%100 != 0 {
		return "", fmt.Errorf("数量必须是100的正整数倍: %d", quantity)
	}
	if price <= 0 {
		return "", fmt.Errorf("价格必须为正: %.2f", price)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	amount := price * float64(quantity)
	commission := a.commission(amount)
	totalCost := amount + commission
	if a.cash < totalCost {
		return "", fmt.Errorf("资金不足，需要%.2f元，可用%.2f元", totalCost, a.cash)
	}

	a.cash -= totalCost
	pos, ok := a.positions[code]
	if !ok {
		a.positions[code] = &Position{Code: code, Quantity: quantity, CostPrice: price, CurrentPrice: price}
	} else {
		totalCostBasis := pos.CostPrice*float64(pos.Quantity) + price*float64(quantity)
		pos.Quantity += quantity
		pos.CostPrice = totalCostBasis / float64(pos.Quantity)
		pos.CurrentPrice = price
	}

	orderID := a.record(code, SideBuy, price, quantity, amount, commission)
	log.Printf("[INFO] 买入成交: %s %d股 @ %.2f元", code, quantity, price)
	return orderID, nil
}

// Sell fills a sell order immediately. Stamp tax is charged on top of the
// commission.
func (a *PaperAccount) Sell(code string, price float64, quantity int) (string, error) {
	if quantity <= 0 {
		return "", fmt.Errorf("数量必须为正: %d", quantity)
	}
	if price <= 0 {
		return "", fmt.Errorf("价格必须为正: %.2f", price)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	pos, ok := a.positions[code]
	if !ok {
		return "", fmt.Errorf("没有持仓 %s", code)
	}
	if pos.Quantity < quantity {
		return "", fmt.Errorf("持仓不足，持有%d股，卖出%d股", pos.Quantity, quantity)
	}

	amount := price * float64(quantity)
	commission := a.commission(amount) + amount*stampTaxRate
	a.cash += amount - commission

	pos.Quantity -= quantity
	pos.CurrentPrice = price
	if pos.Quantity == 0 {
		delete(a.positions, code)
	}

	orderID := a.record(code, SideSell, price, quantity, amount, commission)
	log.Printf("[INFO] 卖出成交: %s %d股 @ %.2f元", code, quantity, price)
	return orderID, nil
}

// UpdatePrices refreshes the mark price of any held codes.
func (a *PaperAccount) UpdatePrices(prices map[string]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for code, price := range prices {
		if pos, ok := a.positions[code]; ok {
			pos.CurrentPrice = price
		}
	}
}

// Snapshot returns a consistent copy of the account state.
func (a *PaperAccount) Snapshot() AccountSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	marketValue := 0.0
	positions := make([]Position, 0, len(a.positions))
	for _, pos := range a.positions {
		marketValue += pos.MarketValue()
		positions = append(positions, *pos)
	}

	total := a.cash + marketValue
	profit := total - a.initialCapital
	return AccountSnapshot{
		InitialCapital: a.initialCapital,
		Cash:           a.cash,
		MarketValue:    marketValue,
		TotalAssets:    total,
		TotalProfit:    profit,
		TotalProfitPct: profit / a.initialCapital * 100,
		Positions:      positions,
		FillCount:      len(a.fills),
	}
}

// Fills returns a copy of the fill history.
func (a *PaperAccount) Fills() []Fill {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Fill, len(a.fills))
	copy(out, a.fills)
	return out
}

func (a *PaperAccount) commission(amount float64) float64 {
	c := amount * a.commissionRate
	if c < minCommission {
		return minCommission
	}
	return c
}

func (a *PaperAccount) record(code string, side Side, price float64, quantity int, amount, commission float64) string {
	orderID := uuid.NewString()
	a.fills = append(a.fills, Fill{
		OrderID:    orderID,
		Code:       code,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		Amount:     amount,
		Commission: commission,
		Time:       time.Now(),
	})
	return orderID
}
