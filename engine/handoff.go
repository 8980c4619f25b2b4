package engine

// handoffSlot is the rendezvous handle a blocking receiver publishes on
// its waitqueue.Waiter before parking. A sender that finds this receiver
// waiting copies directly into buf and sets used, bypassing the pool and
// priority list entirely.
type handoffSlot struct {
	buf  []byte
	n    int
	prio int
	used bool
}
