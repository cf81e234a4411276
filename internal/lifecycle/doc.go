// Package lifecycle implements the ephemeral task lifecycle engine.
//
// A Manager is a bounded-lifetime task object: manifested on demand, it
// performs computations against an externally-owned broker and then
// guarantees complete sanitization of everything it touched - on explicit
// request or automatically once its maximum lifetime elapses.
//
// STATE MACHINE:
//
//	Active --Dissolve() or timer fires--> Dissolving --sweep completes--> Dissolved
//
// Dissolved is terminal. There is no renewal, no extension, no
// resurrection.
//
// LOCKING MODEL:
//
// All state mutation is confined to Execute and Dissolve and guarded by a
// single mutex per instance. Dissolve holds the lock from the Dissolving
// transition through the sweep, so dissolution always completes before any
// other operation observes the instance again. Execute releases the lock
// across its one broker read (the only suspension point) and re-checks
// state afterwards: if dissolution won the race, the computed result is
// discarded and a DISSOLVED lifecycle error is returned instead of writing
// to an already-swept registry.
//
// CAPABILITIES:
//
// Each instance carries a sealed capability set declared at manifestation:
// one fire-once timer grant and one broker read per Execute, zero broker
// writes or deletes. The grants are enforced mechanically by a guard
// wrapped around whatever broker the caller supplies. The lexical scan in
// internal/scan remains available as an auxiliary heuristic on top of this.
package lifecycle
