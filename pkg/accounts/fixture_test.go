package accounts

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openmf/bankimport/pkg/models"
)

const testFixture = `
payment_types:
  - id: 1
    name: Bank Audi sal
  - id: 2
    name: MPESA/ZAP
disbursement_types:
  - id: 3
    name: MPESA/ZAP
loans:
  - id: 21
    internal_id: 1234567
    external_id: GL 01561
    global_number: "123456789012345"
    client_key: "12345678"
    product: LP1
    due: "400"
    max_payment: "1000"
savings:
  - id: 51
    client_key: "12345678"
    product: SV1
receipts:
  - RC100
`

func newService(t *testing.T) *FixtureService {
	t.Helper()
	svc, err := ParseFixture([]byte(testFixture))
	if err != nil {
		t.Fatalf("ParseFixture failed: %v", err)
	}
	return svc
}

func TestFixtureLookups(t *testing.T) {
	svc := newService(t)

	cases := []struct {
		name   string
		lookup func() (models.AccountRef, error)
	}{
		{"by internal id", func() (models.AccountRef, error) { return svc.LoanAccountByID(1234567) }},
		{"by external id", func() (models.AccountRef, error) { return svc.LoanAccountByExternalID("GL 01561") }},
		{"by global number", func() (models.AccountRef, error) { return svc.LoanAccountByGlobalNumber("123456789012345") }},
		{"by client and product", func() (models.AccountRef, error) { return svc.LoanAccount("12345678", "LP1") }},
	}
	for _, tc := range cases {
		account, err := tc.lookup()
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if account.ID != 21 {
			t.Errorf("%s: account = %d, want 21", tc.name, account.ID)
		}
	}

	savings, err := svc.SavingsAccount("12345678", "SV1")
	if err != nil || savings.ID != 51 {
		t.Errorf("savings = %+v, %v", savings, err)
	}
}

func TestFixtureNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.LoanAccountByID(9999999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_, err = svc.SavingsAccount("12345678", "SV9")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFixtureTotalPaymentDue(t *testing.T) {
	svc := newService(t)

	due, err := svc.TotalPaymentDue(models.AccountRef{ID: 21})
	if err != nil {
		t.Fatalf("TotalPaymentDue failed: %v", err)
	}
	if !due.Equal(decimal.NewFromInt(400)) {
		t.Errorf("due = %s, want 400", due)
	}
}

func TestFixtureValidatePaymentCap(t *testing.T) {
	svc := newService(t)
	payment := models.Payment{Account: models.AccountRef{ID: 21}}

	payment.Amount = decimal.NewFromInt(1000)
	reasons, err := svc.ValidatePayment(payment)
	if err != nil || len(reasons) != 0 {
		t.Errorf("payment at cap: reasons = %v, err = %v", reasons, err)
	}

	payment.Amount = decimal.NewFromInt(1001)
	reasons, err = svc.ValidatePayment(payment)
	if err != nil {
		t.Fatalf("ValidatePayment failed: %v", err)
	}
	if len(reasons) != 1 || reasons[0] != models.ReasonInvalidPaymentAmount {
		t.Errorf("payment over cap: reasons = %v", reasons)
	}
}

func TestFixtureReceipts(t *testing.T) {
	svc := newService(t)

	exists, err := svc.ReceiptExists("RC100")
	if err != nil || !exists {
		t.Errorf("ReceiptExists(RC100) = %v, %v", exists, err)
	}
	exists, err = svc.ReceiptExists("RC999")
	if err != nil || exists {
		t.Errorf("ReceiptExists(RC999) = %v, %v", exists, err)
	}
}

func TestFixtureBadDecimal(t *testing.T) {
	_, err := ParseFixture([]byte("loans:\n  - id: 1\n    due: \"not a number\"\n"))
	if err == nil {
		t.Fatal("expected error for invalid due amount")
	}
}
