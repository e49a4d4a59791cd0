// Package phys defines the core vocabulary of the multi-physics kernel:
//
//   - [StateVector]: named scalar fields consumed by the generic integrators
//   - [Ring]: the capability contract every domain solver implements
//   - [EnergyContributions], [EntropySignature]: per-ring accounting records
//   - [CouplingData]: the payload exchanged along coupling edges
//   - [Session]: per-run bounds table and error log
//   - [Quantity]: dimension-checked scalar arithmetic
//
// # Error model
//
// Dimension mismatches, physical-bound violations, and numerical
// instabilities are fatal and surface as wrapped sentinel errors.
// Conservation drift is data, not an error: the ledger package returns it
// as a structured report so long-running simulations can inspect drift
// without aborting.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. The kernel is
// single-threaded by design: rings own their arrays exclusively and the
// orchestrator serializes all mutation.
package phys
