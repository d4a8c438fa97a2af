// Package ledger records identification runs in SQLite.
//
// The header store on disk says which facts are known. The ledger says how
// they were reached: one row per run, one row per completed round and one row
// per module invocation. Its main consumer is resumption: the last completed
// step for a run path, together with the header total that round ended with,
// lets a new orchestration continue from the step after it while the
// workspace still holds those headers.
//
// # Database Configuration
//
// Set through the connection string, so every connection carries them:
//
//   - WAL mode: readers (idorch history) never block the running engine
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// The schema lives in migrations/NNNN_name.sql. PRAGMA user_version holds the
// last step applied; Open applies the rest in order and refuses a database
// written by a newer schema.
//
// Run identifiers are UUIDv7, so ordering by id follows creation order.
package ledger
