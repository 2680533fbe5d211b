package audi

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/models"
	"github.com/openmf/bankimport/pkg/rowsource"
)

// The tab-delimited export carries the payment type name in the top left
// cell followed by four more header lines before transaction data begins.
const tsvHeaderLines = 5

// TSVImporter parses the tab-delimited Audi Bank statement export.
type TSVImporter struct {
	core
}

func NewTSVImporter(service accounts.Service, logger *log.Logger) *TSVImporter {
	return &TSVImporter{core{service: service, logger: logger}}
}

func (imp *TSVImporter) DisplayName() string {
	return "Audi Bank (tab-delimited)"
}

func (imp *TSVImporter) Parse(data []byte) *models.ParseResult {
	acc := importer.NewAccumulator()
	totals := make(importer.Totals)
	rows := rowsource.FromTSV(data)

	paymentType, ok := imp.resolveHeader(rows, acc)
	if !ok {
		return acc.Result()
	}

	rules := rowRules{dateLayouts: []string{audiDateFormat}, serialPattern: tsvSerialPattern}
	for _, row := range rows[tsvHeaderLines:] {
		if row.Empty() {
			// Blank lines are structurally empty, not invalid.
			continue
		}
		imp.parseDataRow(row, rules, paymentType, totals, acc)
	}

	return acc.Result()
}

func (imp *TSVImporter) resolveHeader(rows []rowsource.Row, acc *importer.Accumulator) (models.PaymentType, bool) {
	if len(rows) == 0 {
		acc.Error(0, "Not enough input. Couldn't read first line.")
		return models.PaymentType{}, false
	}

	topLeftCell := strings.TrimSpace(rows[0].Cell(0))
	if topLeftCell == "" {
		acc.Error(0, "No payment type name found on first line.")
		return models.PaymentType{}, false
	}

	paymentType, ok := imp.resolvePaymentType(topLeftCell)
	if !ok {
		acc.Errorf(0, "No payment type found named '%s'.", topLeftCell)
		return models.PaymentType{}, false
	}

	if len(rows) < tsvHeaderLines {
		acc.Errorf(0, "Not enough input. Only received %d rows.", len(rows))
		return models.PaymentType{}, false
	}

	return paymentType, true
}
