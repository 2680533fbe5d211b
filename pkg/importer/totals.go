package importer

import (
	"github.com/shopspring/decimal"

	"github.com/openmf/bankimport/pkg/models"
)

// Totals tracks the running amount paid to each account within one import
// batch. The host validator sees the total-to-date, not the single row's
// amount, so over-payment is caught across the whole file. Entries only ever
// grow.
type Totals map[models.AccountRef]decimal.Decimal

// Add adds amount to the account's running total and returns the new total.
func (t Totals) Add(account models.AccountRef, amount decimal.Decimal) decimal.Decimal {
	total := t[account].Add(amount)
	t[account] = total
	return total
}
