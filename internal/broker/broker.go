package broker

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Broker places orders produced by a trading orchestrator. Implementations
// return an order reference on success and a descriptive error on rejection.
type Broker interface {
	Buy(code string, price float64, quantity int) (string, error)
	Sell(code string, price float64, quantity int) (string, error)
	Name() string
}
