package loader

import "sync/atomic"

// Guard hands out increasing request tokens so that only the result of
// the most recent load is applied.
type Guard struct {
	latest atomic.Uint64
}

// Next issues a new token, superseding every earlier one.
func (g *Guard) Next() uint64 {
	return g.latest.Add(1)
}

// Current reports whether token is still the latest issued.
func (g *Guard) Current(token uint64) bool {
	return g.latest.Load() == token
}
