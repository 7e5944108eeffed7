package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate applies a row-level write lock to the statement. SQLite has no
// SELECT ... FOR UPDATE; its writes are serialized by the database file lock,
// so the clause is skipped there.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
