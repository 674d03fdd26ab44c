// Package renewal decides when gateway certificates are renewed and keeps
// the pending-renewal bookkeeping consistent with what storage actually
// holds.
//
// # Components
//
//   - Due / Evaluate: expiry arithmetic and the per-host decision
//     (renew, clean up, or nothing)
//   - Bookkeeper: pending-renewal records under RenewConfigPrefix,
//     reconciled idempotently against certificate presence
//   - Runner: the cycle orchestrator with a per-account single-flight lock
//     and per-host failure isolation
//
// # Decision Contract
//
// A certificate is due for renewal iff it expires within the configured
// threshold, boundary inclusive. Cleanup applies only when a pending record
// refers to a certificate that no longer exists; a corrupt certificate is
// an error, never a cleanup signal, so data corruption cannot masquerade as
// absence.
//
// # Cycle Semantics
//
//	runner := renewal.NewRunner(certs, store, client, client.AccountName(), cfg.RenewThreshold())
//	if err := runner.RunCycle(ctx); err != nil {
//		// err aggregates per-host failures; the cycle itself completed
//	}
//
// Cycles are sequential over hosts to stay within ACME rate limits. Two
// cycles for the same account never overlap: the second caller gets
// ErrCycleInProgress. Scheduling cycles (tickers, cron) is left to the
// caller.
package renewal
