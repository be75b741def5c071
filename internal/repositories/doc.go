// Package repositories implements SQLite persistence for play history.
//
// [PlayRepository] stores one row per track that became current while the bridge was running.
// Rows are append-only; the history command reads them back newest first.
package repositories
