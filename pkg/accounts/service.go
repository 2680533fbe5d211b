package accounts

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/openmf/bankimport/pkg/models"
)

// ErrNotFound reports that a lookup matched no account. Importers tolerate it
// where the row may legitimately reference a product the client does not
// hold; any other lookup error is fatal to the row.
var ErrNotFound = errors.New("account not found")

// Service is the host-side collaborator the importers depend on. The host
// wires its own implementation; FixtureService backs the CLI dry-run mode and
// the tests.
type Service interface {
	LoanAccountByID(id int) (models.AccountRef, error)
	LoanAccountByExternalID(externalID string) (models.AccountRef, error)
	LoanAccountByGlobalNumber(globalNum string) (models.AccountRef, error)

	// LoanAccount and SavingsAccount look up by client key (government ID or
	// phone number) plus product short name. Both return ErrNotFound for
	// absence.
	LoanAccount(clientKey, productShortName string) (models.AccountRef, error)
	SavingsAccount(clientKey, productShortName string) (models.AccountRef, error)

	TotalPaymentDue(account models.AccountRef) (decimal.Decimal, error)

	// ValidatePayment and ValidateDisbursement receive the cumulative
	// (batch-running-total) payment for the account, not the single row's
	// amount.
	ValidatePayment(cumulative models.Payment) ([]models.InvalidPaymentReason, error)
	ValidateDisbursement(cumulative models.Payment) ([]models.InvalidPaymentReason, error)

	ReceiptExists(receiptID string) (bool, error)

	PaymentTypes() ([]models.PaymentType, error)
	DisbursementTypes() ([]models.PaymentType, error)
}
