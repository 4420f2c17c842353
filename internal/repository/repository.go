// Package repository implements persistence on top of sqlx. Queries are
// written with '?' placeholders and rebound for the active driver.
package repository

import "github.com/jmoiron/sqlx"

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}
