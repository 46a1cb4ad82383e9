// Package models defines the records of the field log: deployments, their
// movement events, tapes and tape events, and the inspection records the
// ledger cross-references. Derived values (phases, recording state, the
// merged timeline) live next to the packages that compute them.
package models
