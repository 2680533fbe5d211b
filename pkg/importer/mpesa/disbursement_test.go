package mpesa

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/openmf/bankimport/pkg/models"
)

func disbursalRow(receipt, withdrawn, partyDetails string) []string {
	return []string{receipt, "2010-01-14 10:00:00", "details", "Completed", withdrawn, "0",
		"1000", "yes", "Disburse Loan", "other party", partyDetails}
}

func parseDisbursals(t *testing.T, opts Options, rows [][]string) *models.ParseResult {
	t.Helper()
	imp := NewDisbursementImporter(newFixture(t), log.Default(), opts)
	return imp.Parse(buildWorkbook(t, rows))
}

func TestDisbursalSuccess(t *testing.T) {
	result := parseDisbursals(t, Options{}, statementRows(
		disbursalRow("RC1", "500", "12345678 LP1"),
	))

	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if len(result.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %+v", result.Payments)
	}
	p := result.Payments[0]
	if p.Account.ID != 41 || p.Amount.String() != "500" {
		t.Errorf("payment = %+v", p)
	}
	if p.Kind != models.KindDisbursal {
		t.Errorf("kind = %v, want disbursal", p.Kind)
	}
	if got := result.TotalDisbursed.String(); got != "500" {
		t.Errorf("total disbursed = %s, want 500", got)
	}
	if !result.TotalImported.IsZero() {
		t.Errorf("total imported = %s, want 0", result.TotalImported)
	}
}

func TestDisbursalLimitExceeded(t *testing.T) {
	opts := Options{MaxDisbursalLimit: decimal.NewFromInt(400)}
	result := parseDisbursals(t, opts, statementRows(
		disbursalRow("RC1", "500", "12345678 LP1"),
	))

	if len(result.Payments) != 0 {
		t.Fatalf("expected no payments, got %+v", result.Payments)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "exceeds the maximum disbursal limit") {
		t.Errorf("errors = %v", result.Errors)
	}
}

func TestDisbursalMissingProductToken(t *testing.T) {
	result := parseDisbursals(t, Options{}, statementRows(
		disbursalRow("RC1", "500", "12345678"),
	))

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Loan product short name could not be extracted") {
		t.Errorf("errors = %v", result.Errors)
	}
}

func TestDisbursalUnknownLoanAccount(t *testing.T) {
	result := parseDisbursals(t, Options{}, statementRows(
		disbursalRow("RC1", "500", "00000000 LP1"),
	))

	if len(result.Errors) != 1 {
		t.Errorf("errors = %v", result.Errors)
	}
	if len(result.Payments) != 0 {
		t.Errorf("expected no payments, got %+v", result.Payments)
	}
}
