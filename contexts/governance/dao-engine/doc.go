// Package daoengine implements the token-weighted governance engine inside
// the governance context.
//
// The module owns deposit custody, proposal registration, per-proposal
// delegation, weighted voting and quorum-gated execution of proposal
// instructions. State transitions live in domain/services and are applied
// one at a time through the application layer, which persists snapshots and
// outbox events behind ports.
package daoengine
