package mpesa

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/models"
	"github.com/openmf/bankimport/pkg/rowsource"
)

// DisbursementImporter parses the M-PESA export as loan disbursals: the
// withdrawn column pays out one loan account per row.
type DisbursementImporter struct {
	service accounts.Service
	logger  *log.Logger
	opts    Options
}

func NewDisbursementImporter(service accounts.Service, logger *log.Logger, opts Options) *DisbursementImporter {
	return &DisbursementImporter{service: service, logger: logger, opts: opts}
}

func (imp *DisbursementImporter) DisplayName() string {
	return "M-PESA Disburse Loan Excel 97(-2007)"
}

func (imp *DisbursementImporter) Parse(data []byte) *models.ParseResult {
	acc := importer.NewAccumulator()
	totals := make(importer.Totals)

	rows, err := rowsource.FromSpreadsheet(data)
	if err != nil {
		acc.Error(0, err.Error())
		return acc.Result()
	}

	types, err := imp.service.DisbursementTypes()
	if err != nil {
		acc.Errorf(0, "Error fetching disbursement types: %v", err)
		return acc.Result()
	}
	disburseType, ok := importer.FindPaymentType(types, paymentTypeName)
	if !ok {
		acc.Errorf(0, "Disbursement type %s not found. Have you configured this disbursement type?", paymentTypeName)
		return acc.Result()
	}

	dataRows, ok := skipToTransactionData(rows, acc)
	if !ok {
		return acc.Result()
	}

	for _, row := range dataRows {
		imp.parseDataRow(row, disburseType, totals, acc)
	}

	return acc.Result()
}

func (imp *DisbursementImporter) parseDataRow(row rowsource.Row, disburseType models.PaymentType,
	totals importer.Totals, acc *importer.Accumulator) {
	acc.RowRead()

	if !imp.isRowValid(row, acc) {
		return
	}

	transDate, err := parseDate(row.Cell(colTransactionDate))
	if err != nil {
		acc.Error(row.Num, formatError(row, "Date does not begin with expected format (YYYY-MM-DD)"))
		return
	}

	tokens := strings.Fields(strings.TrimSpace(row.Cell(colTransactionPartyDetails)))
	if len(tokens) < 2 {
		acc.Error(row.Num, formatError(row, "Loan product short name could not be extracted"))
		return
	}
	governmentID, loanProduct := tokens[0], tokens[1]

	withdrawn, err := parseAmount(row.Cell(colWithdrawn))
	if err != nil {
		acc.Error(row.Num, formatError(row, `"Withdrawn" amount is invalid`))
		return
	}
	if !imp.opts.MaxDisbursalLimit.IsZero() && withdrawn.GreaterThan(imp.opts.MaxDisbursalLimit) {
		acc.Error(row.Num, formatError(row, fmt.Sprintf(
			"Withdrawn amount %s exceeds the maximum disbursal limit %s",
			withdrawn, imp.opts.MaxDisbursalLimit)))
		return
	}

	account, err := imp.service.LoanAccount(governmentID, loanProduct)
	if err != nil {
		acc.Error(row.Num, formatError(row, err.Error()))
		return
	}

	payment := models.Payment{
		Account: account,
		Amount:  withdrawn,
		Date:    transDate,
		Type:    disburseType,
		Receipt: strings.TrimSpace(row.Cell(colReceipt)),
		Kind:    models.KindDisbursal,
	}

	cumulative := payment
	cumulative.Amount = totals.Add(account, withdrawn)

	reasons, err := imp.service.ValidateDisbursement(cumulative)
	if err != nil {
		acc.Error(row.Num, formatError(row, err.Error()))
		return
	}
	if len(reasons) > 0 {
		for _, reason := range reasons {
			acc.Error(row.Num, formatError(row, reason.Message()))
		}
		return
	}

	acc.Success(payment)
}

func (imp *DisbursementImporter) isRowValid(row rowsource.Row, acc *importer.Accumulator) bool {
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
	if row.Blank(colWithdrawn) {
		acc.Error(row.Num, formatError(row, `"Withdrawn" field is empty.`))
		return false
	}
	return true
}
