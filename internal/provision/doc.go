// Package provision is the control spine of the provisioner: it runs the
// fixed ordered list of setup steps, tracks per-step outcomes in a run
// ledger, and reduces them to a final run status.
//
// The defining design choice is graceful degradation. A failing step is
// recorded and the run continues, so a broken dashboard plugin cannot stop
// the database or the collector from coming up. The exception is the small
// foundational set (platform detection, runtime installation, install-root
// creation, credential generation): every later step's idempotency
// assumptions depend on them, so their failure aborts the run immediately.
package provision
