package audi

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/models"
	"github.com/openmf/bankimport/pkg/rowsource"
)

// The spreadsheet export also declares the payment type in the top left cell
// and spends five rows on headers.
const xlsHeaderRows = 5

// XLSImporter parses the Audi Bank spreadsheet export. Payments from this
// format carry the allow-overpayments option, matching how the branch posts
// them.
type XLSImporter struct {
	core
}

func NewXLSImporter(service accounts.Service, logger *log.Logger) *XLSImporter {
	return &XLSImporter{core{service: service, logger: logger}}
}

func (imp *XLSImporter) DisplayName() string {
	return "Audi Bank (Excel)"
}

func (imp *XLSImporter) Parse(data []byte) *models.ParseResult {
	acc := importer.NewAccumulator()
	totals := make(importer.Totals)

	rows, err := rowsource.FromSpreadsheet(data)
	if err != nil {
		acc.Error(0, err.Error())
		return acc.Result()
	}

	paymentType, ok := imp.resolveHeader(rows, acc)
	if !ok {
		return acc.Result()
	}

	rules := rowRules{dateLayouts: xlsDateLayouts, serialPattern: xlsSerialPattern, allowOverpayments: true}
	for _, row := range rows[xlsHeaderRows:] {
		if row.Blank(colTransDate) {
			// Same justification as skipping blank lines in a text file.
			continue
		}
		imp.parseDataRow(row, rules, paymentType, totals, acc)
	}

	return acc.Result()
}

func (imp *XLSImporter) resolveHeader(rows []rowsource.Row, acc *importer.Accumulator) (models.PaymentType, bool) {
	if len(rows) == 0 {
		acc.Error(0, "Not enough input. Couldn't read first row.")
		return models.PaymentType{}, false
	}

	topLeftCell := strings.TrimSpace(rows[0].Cell(0))
	if topLeftCell == "" {
		acc.Error(0, "No payment type name found in first cell.")
		return models.PaymentType{}, false
	}

	paymentType, ok := imp.resolvePaymentType(topLeftCell)
	if !ok {
		acc.Errorf(0, "No payment type found named '%s'.", topLeftCell)
		return models.PaymentType{}, false
	}

	if len(rows) <= xlsHeaderRows {
		acc.Error(0, "No rows found with import data.")
		return models.PaymentType{}, false
	}

	return paymentType, true
}
