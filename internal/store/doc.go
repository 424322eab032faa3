// Package store runs compiled faceted queries against a relational database.
//
// A Store wraps a sqlx connection for one of three drivers:
//   - sqlite3: mattn/go-sqlite3 (cgo)
//   - sqlite: modernc.org/sqlite (pure Go)
//   - mysql: go-sql-driver/mysql
//
// Statements come from package querysql with "?" placeholders. IN lists are
// bound as a single slice argument and expanded with sqlx.In before the
// statement is rebound for the driver.
//
// # Database Configuration
//
// SQLite connections are pinned to a single open connection and configured
// with:
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// An empty SQLite DSN opens a private in-memory database.
package store
