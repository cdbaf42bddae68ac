// Package tracker records the latest progress of every task in a batch.
//
// This package is internal to pearch. It keeps one [TaskRecord] per batch
// item, keyed by the item index, and fans updates out to subscribers so the
// progress server can stream them.
//
// The main components are:
//
//   - [Tracker]: interface for recording and subscribing to task progress
//   - [MemoryTracker]: in-memory implementation with non-blocking pub/sub
//   - [TaskRecord]: JSON representation of one task's latest state
//
// Subscribers receive updates via buffered channels; slow subscribers miss
// updates rather than stall the batch.
package tracker
