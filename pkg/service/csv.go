package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/openmf/bankimport/pkg/models"
)

// WritePaymentsCSV writes parsed payments in a fixed-column CSV layout for
// review or downstream loading.
func WritePaymentsCSV(w io.Writer, payments []models.Payment) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"Account", "Amount", "Date", "PaymentType", "Kind", "Receipt", "Comment"}); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, p := range payments {
		record := []string{
			strconv.Itoa(p.Account.ID),
			p.Amount.String(),
			p.Date.Format("2006-01-02"),
			p.Type.Name,
			p.Kind.String(),
			p.Receipt,
			p.Comment,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("error writing payment: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
