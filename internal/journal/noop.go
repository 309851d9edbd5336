package journal

// NoopJournal is a no-op implementation used when SQLite is not configured.
type NoopJournal struct{}

func NewNoopJournal() *NoopJournal { return &NoopJournal{} }

func (n *NoopJournal) RecordSignal(_ *SignalEntry) error     { return nil }
func (n *NoopJournal) RecordTrade(_ *TradeEntry) error       { return nil }
func (n *NoopJournal) RecordBacktest(_ *BacktestEntry) error { return nil }
func (n *NoopJournal) Close() error                          { return nil }
