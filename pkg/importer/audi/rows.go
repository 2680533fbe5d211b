package audi

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/models"
	"github.com/openmf/bankimport/pkg/rowsource"
)

const audiDateFormat = "2006/01/02"

// The spreadsheet export renders dates through cell formats, so a couple of
// spellings show up in the wild.
var xlsDateLayouts = []string{audiDateFormat, "2006-01-02", "02/01/2006"}

var (
	tsvSerialPattern = regexp.MustCompile(`^[0-9]+$`)
	xlsSerialPattern = regexp.MustCompile(`^[0-9]+(\.0+)?$`)
)

// rowRules captures the small format differences between the two Audi
// exports. Everything else about a data row is processed identically.
type rowRules struct {
	dateLayouts       []string
	serialPattern     *regexp.Regexp
	allowOverpayments bool
}

// parseDataRow validates one data row, resolves its account and, when the
// cumulative amount passes host validation, records the payment. Any failure
// records a message and leaves the result otherwise untouched.
func (c *core) parseDataRow(row rowsource.Row, rules rowRules, paymentType models.PaymentType,
	totals importer.Totals, acc *importer.Accumulator) {
	acc.RowRead()

	if len(row.Cells) < maxCellNum {
		acc.Errorf(row.Num, "Row %d is missing data: not enough fields.", row.Num)
		return
	}

	if row.Blank(colDebitOrCredit) {
		acc.Errorf(row.Num, "Row %d is missing data: debit/credit not specified.", row.Num)
		return
	}
	if !strings.EqualFold(strings.TrimSpace(row.Cell(colDebitOrCredit)), "C") {
		// Not a credit: ignore.
		acc.Ignore(row.Num, "")
		return
	}

	accountID := AccountID(row.Cell(colDescription))
	if accountID == "" {
		acc.Errorf(row.Num, "Loan account ID could not be extracted from row %d", row.Num)
		return
	}

	serial := strings.TrimSpace(row.Cell(colSerial))
	if serial == "" || !rules.serialPattern.MatchString(serial) {
		acc.Errorf(row.Num, "Serial value in row %d does not follow expected format.", row.Num)
		return
	}
	if i := strings.IndexByte(serial, '.'); i >= 0 {
		serial = serial[:i]
	}

	amountText := strings.ReplaceAll(strings.TrimSpace(row.Cell(colAmount)), ",", "")
	paymentAmount, err := decimal.NewFromString(amountText)
	if err != nil {
		acc.Errorf(row.Num, "Invalid amount in row %d.", row.Num)
		return
	}

	account, err := c.lookupAccount(accountID)
	if err != nil {
		acc.Errorf(row.Num, "Error looking up account ID from row %d: %v", row.Num, err)
		return
	}

	transDate, err := parseDate(row.Cell(colTransDate), rules.dateLayouts)
	if err != nil {
		acc.Errorf(row.Num, "Transaction date value in row %d does not follow expected format (%s).", row.Num, "yyyy/MM/dd")
		return
	}

	payment := models.Payment{
		Account:           account,
		Amount:            paymentAmount,
		Date:              transDate,
		Type:              paymentType,
		Comment:           "serial=" + serial,
		AllowOverpayments: rules.allowOverpayments,
	}

	cumulative := payment
	cumulative.Amount = totals.Add(account, paymentAmount)

	reasons, err := c.service.ValidatePayment(cumulative)
	if err != nil {
		acc.Errorf(row.Num, "Error validating payment in row %d: %v", row.Num, err)
		return
	}
	if len(reasons) > 0 {
		for _, reason := range reasons {
			acc.Error(row.Num, validationMessage(reason, row.Num))
		}
		return
	}

	acc.Success(payment)
}

func parseDate(text string, layouts []string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range layouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date")
}
