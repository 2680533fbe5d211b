// Package mpesa imports M-PESA mobile-money spreadsheet exports. A single
// paid-in row can settle several loan accounts and a savings account for the
// same client, so each row fans out into multiple payments allocated by
// outstanding due amount.
package mpesa

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/models"
	"github.com/openmf/bankimport/pkg/rowsource"
)

const (
	colReceipt                 = 0
	colTransactionDate         = 1
	colDetails                 = 2
	colStatus                  = 3
	colWithdrawn               = 4
	colPaidIn                  = 5
	colBalance                 = 6
	colBalanceConfirmed        = 7
	colTransactionType         = 8
	colOtherPartyInfo          = 9
	colTransactionPartyDetails = 10
	maxCellNum                 = 11
)

const (
	expectedStatus  = "Completed"
	paymentTypeName = "MPESA/ZAP"

	// transactionsMarker starts the data section; the row after it holds
	// column descriptions.
	transactionsMarker = "Transactions"
)

var dateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// Options tunes per-deployment behavior of the M-PESA importers.
type Options struct {
	// TransactionOrder is the configured product ordering used when the
	// transaction party details field carries only the client key.
	TransactionOrder []string

	// Product, when set and present among the row's product tokens, reduces
	// the allocation to that single product.
	Product string

	// MaxDisbursalLimit caps single disbursal amounts. Zero means no cap.
	MaxDisbursalLimit decimal.Decimal
}

// Importer parses the M-PESA payment export (XLS or XLSX).
type Importer struct {
	service accounts.Service
	logger  *log.Logger
	opts    Options
}

func NewImporter(service accounts.Service, logger *log.Logger, opts Options) *Importer {
	return &Importer{service: service, logger: logger, opts: opts}
}

func (imp *Importer) DisplayName() string {
	return "M-PESA Excel 97(-2007)"
}

func (imp *Importer) Parse(data []byte) *models.ParseResult {
	acc := importer.NewAccumulator()
	totals := make(importer.Totals)

	rows, err := rowsource.FromSpreadsheet(data)
	if err != nil {
		acc.Error(0, err.Error())
		return acc.Result()
	}

	types, err := imp.service.PaymentTypes()
	if err != nil {
		acc.Errorf(0, "Error fetching payment types: %v", err)
		return acc.Result()
	}
	paymentType, ok := importer.FindPaymentType(types, paymentTypeName)
	if !ok {
		acc.Errorf(0, "Payment type %s not found. Have you configured this payment type?", paymentTypeName)
		return acc.Result()
	}

	dataRows, ok := skipToTransactionData(rows, acc)
	if !ok {
		return acc.Result()
	}

	for _, row := range dataRows {
		imp.parseDataRow(row, paymentType, totals, acc)
	}

	return acc.Result()
}

// skipToTransactionData scans for the marker row that starts the data
// section and drops it along with the column description row that follows.
func skipToTransactionData(rows []rowsource.Row, acc *importer.Accumulator) ([]rowsource.Row, bool) {
	for i, row := range rows {
		if strings.TrimSpace(row.Cell(0)) == transactionsMarker {
			if i+2 > len(rows) {
				return nil, true
			}
			return rows[i+2:], true
		}
	}
	acc.Error(0, "No rows found with import data.")
	return nil, false
}

func (imp *Importer) parseDataRow(row rowsource.Row, paymentType models.PaymentType,
	totals importer.Totals, acc *importer.Accumulator) {
	acc.RowRead()

	if !imp.isRowValid(row, acc) {
		return
	}

	receipt := strings.TrimSpace(row.Cell(colReceipt))

	transDate, err := parseDate(row.Cell(colTransactionDate))
	if err != nil {
		acc.Error(row.Num, formatError(row, "Date does not begin with expected format (YYYY-MM-DD)"))
		return
	}

	tokens, err := imp.partyDetailTokens(row)
	if err != nil {
		acc.Error(row.Num, formatError(row, err.Error()))
		return
	}

	governmentID := tokens[0]
	lastProduct := tokens[len(tokens)-1]
	loanProducts := tokens[1 : len(tokens)-1]

	paidIn, err := parseAmount(row.Cell(colPaidIn))
	if err != nil {
		acc.Error(row.Num, formatError(row, `"Paid in" amount is invalid`))
		return
	}

	// Allocate greedily across the listed loan products, paying each up to
	// its outstanding due amount. Each allocation is validated against the
	// batch-cumulative total; one rejection cancels the whole row.
	remaining := paidIn
	var loanPayments []models.Payment
	for _, product := range loanProducts {
		account, err := imp.service.LoanAccount(governmentID, product)
		if errors.Is(err, accounts.ErrNotFound) {
			continue
		}
		if err != nil {
			acc.Error(row.Num, formatError(row, err.Error()))
			return
		}

		due, err := imp.service.TotalPaymentDue(account)
		if err != nil {
			acc.Error(row.Num, formatError(row, err.Error()))
			return
		}

		allocation := decimal.Zero
		if remaining.IsPositive() {
			if remaining.GreaterThan(due) {
				allocation = due
				remaining = remaining.Sub(due)
			} else {
				allocation = remaining
				remaining = decimal.Zero
			}
		}

		payment := models.Payment{
			Account: account,
			Amount:  allocation,
			Date:    transDate,
			Type:    paymentType,
			Receipt: receipt,
		}
		if !imp.validate(payment, totals, row, acc) {
			return
		}
		if allocation.IsPositive() {
			loanPayments = append(loanPayments, payment)
		}
	}

	lastAccount, ok := imp.resolveLastAccount(governmentID, lastProduct, remaining, row, acc)
	if !ok {
		return
	}

	lastAmount := decimal.Zero
	if remaining.IsPositive() {
		lastAmount = remaining
	}

	lastPayment := models.Payment{
		Account: lastAccount,
		Amount:  lastAmount,
		Date:    transDate,
		Type:    paymentType,
		Receipt: receipt,
	}
	if !imp.validate(lastPayment, totals, row, acc) {
		return
	}

	acc.Success(append(loanPayments, lastPayment)...)
}

func (imp *Importer) isRowValid(row rowsource.Row, acc *importer.Accumulator) bool {
	if len(row.Cells) < maxCellNum {
		acc.Error(row.Num, formatError(row, "Missing required data"))
		return false
	}
	if status := strings.TrimSpace(row.Cell(colStatus)); status != expectedStatus {
		acc.Ignore(row.Num, formatIgnored(row, fmt.Sprintf("Status of %s instead of %s", status, expectedStatus)))
		return false
	}
	if row.Blank(colTransactionDate) {
		acc.Error(row.Num, formatError(row, "Date field is empty"))
		return false
	}
	if row.Blank(colTransactionPartyDetails) {
		acc.Error(row.Num, formatError(row, `"Transaction party details" field is empty.`))
		return false
	}
	if row.Blank(colPaidIn) {
		acc.Error(row.Num, formatError(row, `"Paid in" field is empty.`))
		return false
	}

	if receipt := strings.TrimSpace(row.Cell(colReceipt)); receipt != "" {
		if acc.MarkReceipt(receipt) {
			acc.Ignore(row.Num, formatIgnored(row, "Transactions with same Receipt ID have already been imported"))
			return false
		}
		exists, err := imp.service.ReceiptExists(receipt)
		if err != nil {
			acc.Error(row.Num, formatError(row, err.Error()))
			return false
		}
		if exists {
			acc.Ignore(row.Num, formatIgnored(row, "Transactions with same Receipt ID have already been imported"))
			return false
		}
	}
	return true
}

// partyDetailTokens splits the transaction party details field into the
// client key plus product short names. A bare client key falls back to the
// configured transaction order; a user-selected product, when present among
// the tokens, wins over the configured ordering.
func (imp *Importer) partyDetailTokens(row rowsource.Row) ([]string, error) {
	details := strings.TrimSpace(row.Cell(colTransactionPartyDetails))
	details = strings.TrimSuffix(details, ".0")

	tokens := strings.Fields(details)
	if len(tokens) == 1 {
		if len(imp.opts.TransactionOrder) == 0 {
			return nil, errors.New(`No Product name in "Transaction Party Details" field and ImportTransactionOrder property is not set`)
		}
		tokens = append(tokens, imp.opts.TransactionOrder...)
	}

	if imp.opts.Product != "" {
		for _, t := range tokens[1:] {
			if strings.EqualFold(t, imp.opts.Product) {
				tokens = []string{tokens[0], t}
				break
			}
		}
	}

	return tokens, nil
}

// resolveLastAccount finds the terminal account for the remainder: the
// savings account when the client has one, otherwise a loan account whose
// due must match the remainder exactly.
func (imp *Importer) resolveLastAccount(governmentID, product string, remaining decimal.Decimal,
	row rowsource.Row, acc *importer.Accumulator) (models.AccountRef, bool) {
	account, err := imp.service.SavingsAccount(governmentID, product)
	if err == nil {
		return account, true
	}
	if !errors.Is(err, accounts.ErrNotFound) {
		acc.Error(row.Num, formatError(row, err.Error()))
		return models.AccountRef{}, false
	}

	account, err = imp.service.LoanAccount(governmentID, product)
	if errors.Is(err, accounts.ErrNotFound) {
		acc.Error(row.Num, formatError(row, "No account found"))
		return models.AccountRef{}, false
	}
	if err != nil {
		acc.Error(row.Num, formatError(row, err.Error()))
		return models.AccountRef{}, false
	}

	due, err := imp.service.TotalPaymentDue(account)
	if err != nil {
		acc.Error(row.Num, formatError(row, err.Error()))
		return models.AccountRef{}, false
	}
	if !remaining.Equal(due) {
		acc.Error(row.Num, formatError(row,
			"Last account is a loan account but the total payment due does not match the amount paid in"))
		return models.AccountRef{}, false
	}
	return account, true
}

func (imp *Importer) validate(payment models.Payment, totals importer.Totals,
	row rowsource.Row, acc *importer.Accumulator) bool {
	cumulative := payment
	cumulative.Amount = totals.Add(payment.Account, payment.Amount)

	reasons, err := imp.service.ValidatePayment(cumulative)
	if err != nil {
		acc.Error(row.Num, formatError(row, err.Error()))
		return false
	}
	if len(reasons) > 0 {
		for _, reason := range reasons {
			acc.Error(row.Num, formatError(row, reason.Message()))
		}
		return false
	}
	return true
}

func formatError(row rowsource.Row, msg string) string {
	if row.Blank(colReceipt) {
		return fmt.Sprintf("Row <%d> error - %s", row.Num, msg)
	}
	return fmt.Sprintf("Row <%d> error - %s - %s", row.Num, strings.TrimSpace(row.Cell(colReceipt)), msg)
}

func formatIgnored(row rowsource.Row, msg string) string {
	return fmt.Sprintf("Row <%d> ignored - %s - %s", row.Num, strings.TrimSpace(row.Cell(colReceipt)), msg)
}

func parseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date")
}

func parseAmount(text string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
}
