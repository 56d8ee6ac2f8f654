// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package reconciler computes the local mutations needed to converge a local
// snapshot of a collection toward its remote snapshot.
//
// Reconcile is a pure function over two slices: it reads nothing, writes
// nothing and keeps no state between calls, so the same two snapshots always
// produce the same Result. Applying the Result is the caller's job and must
// happen inside one local store transaction. If that transaction fails the
// Result is discarded and recomputed from fresh snapshots on the next cycle.
//
// Keys present only remotely are inserted, keys present only locally are
// deleted (the remote is authoritative for deletions) unless the local entity
// is protected, e.g. a local creation that was never pushed. Keys present on
// both sides are reported as unchanged and, depending on the merge Strategy,
// may additionally be overwritten with the remote content.
package reconciler
