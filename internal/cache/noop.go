// internal/cache/noop.go
package cache

import "context"

// Noop never stores anything; every lookup is a miss.
type Noop struct {
	counters
}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Get(context.Context, string) ([]byte, bool, error) {
	n.record(false)
	return nil, false, nil
}

func (n *Noop) Set(context.Context, string, []byte) error { return nil }

func (n *Noop) Delete(context.Context, string) error { return nil }

func (n *Noop) Has(context.Context, string) (bool, error) { return false, nil }

func (n *Noop) Clear(context.Context) error { return nil }

func (n *Noop) Stats() Stats { return Stats{Misses: n.misses.Load()} }

func (n *Noop) Close() error { return nil }
