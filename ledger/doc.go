// Package ledger is the pure computation core of the backend: it turns
// expenses, settlements and recurring templates into per-user shares, net
// balances and suggested payments. It performs no I/O; callers fetch the
// records, invoke the engine, and persist whatever comes back.
package ledger
