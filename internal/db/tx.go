package db

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// CheckoutWarnAfter is how long a transaction may stay open before a
// diagnostic warning is logged. The transaction is not reclaimed; the log line
// points at a likely connection leak.
var CheckoutWarnAfter = 5 * time.Second

// InTx runs fn inside a single transaction. On any error (or panic) the
// transaction is rolled back before the error propagates; otherwise it is
// committed. The connection is released on every exit path.
//
// name identifies the workflow in the checkout-timeout warning.
func InTx(gdb *gorm.DB, name string, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	timer := time.AfterFunc(CheckoutWarnAfter, func() {
		log.Printf("warning: transaction %q checked out for more than %s (started %s)", name, CheckoutWarnAfter, start.Format(time.RFC3339))
	})
	defer timer.Stop()

	tx := gdb.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
