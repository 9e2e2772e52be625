// Package store provides the SQLite-backed document index that content ids
// are resolved against.
//
// Each row maps a numeric content id to the wiki document it was migrated
// to. Rows are upserted; seq records the order of the last writes so that
// listings are stable.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
