package importer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openmf/bankimport/pkg/models"
)

// Accumulator collects the outcome of one parse call. All state is call
// scoped; a fresh Accumulator per Parse keeps concurrent imports safe.
type Accumulator struct {
	result       models.ParseResult
	erroredRows  map[int]bool
	ignoredRows  map[int]bool
	seenReceipts map[string]bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		erroredRows:  make(map[int]bool),
		ignoredRows:  make(map[int]bool),
		seenReceipts: make(map[string]bool),
	}
}

// RowRead counts a data row that reached the validator.
func (a *Accumulator) RowRead() {
	a.result.RowsRead++
}

// Error records a row-level error message. Pass rowNum 0 for structural
// errors that are not tied to a row. A row triggering several messages is
// still counted once.
func (a *Accumulator) Error(rowNum int, msg string) {
	a.result.Errors = append(a.result.Errors, msg)
	if rowNum > 0 && !a.erroredRows[rowNum] {
		a.erroredRows[rowNum] = true
		a.result.ErroredRows++
	}
}

func (a *Accumulator) Errorf(rowNum int, format string, args ...any) {
	a.Error(rowNum, fmt.Sprintf(format, args...))
}

// Ignore records a row that was intentionally skipped, separate from errors.
func (a *Accumulator) Ignore(rowNum int, msg string) {
	if msg != "" {
		a.result.Ignored = append(a.result.Ignored, msg)
	}
	if rowNum > 0 && !a.ignoredRows[rowNum] {
		a.ignoredRows[rowNum] = true
		a.result.IgnoredRows++
	}
}

// Success appends the payments produced by one fully validated row.
func (a *Accumulator) Success(payments ...models.Payment) {
	a.result.Payments = append(a.result.Payments, payments...)
	a.result.SuccessRows++
}

// MarkReceipt records a receipt ID seen in this batch and reports whether it
// had already appeared, for the in-file duplicate check.
func (a *Accumulator) MarkReceipt(receiptID string) (duplicate bool) {
	if a.seenReceipts[receiptID] {
		return true
	}
	a.seenReceipts[receiptID] = true
	return false
}

// HasErrors reports whether any error was recorded so far.
func (a *Accumulator) HasErrors() bool {
	return len(a.result.Errors) > 0
}

// Result computes the aggregate sums and returns the final ParseResult.
func (a *Accumulator) Result() *models.ParseResult {
	var imported, disbursed decimal.Decimal
	for _, p := range a.result.Payments {
		if p.Kind == models.KindDisbursal {
			disbursed = disbursed.Add(p.Amount)
		} else {
			imported = imported.Add(p.Amount)
		}
	}
	a.result.TotalImported = imported
	a.result.TotalDisbursed = disbursed
	return &a.result
}
