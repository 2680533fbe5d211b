package accounts

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/openmf/bankimport/pkg/models"
)

// FixtureService implements Service from a YAML description of accounts. It
// exists for dry-run parsing from the CLI and for tests; a live deployment
// wires the host's account service instead.
type FixtureService struct {
	PaymentTypeList      []models.PaymentType
	DisbursementTypeList []models.PaymentType
	Loans                []FixtureLoan
	Savings              []FixtureSavings
	KnownReceipts        map[string]bool
}

type FixtureLoan struct {
	ID           int
	InternalID   int
	ExternalID   string
	GlobalNumber string
	ClientKey    string
	Product      string
	Due          decimal.Decimal
	// MaxPayment caps the cumulative amount the validator accepts. Zero means
	// no cap.
	MaxPayment decimal.Decimal
}

type FixtureSavings struct {
	ID        int
	ClientKey string
	Product   string
}

type fixtureFile struct {
	PaymentTypes []struct {
		ID   int    `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"payment_types"`
	DisbursementTypes []struct {
		ID   int    `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"disbursement_types"`
	Loans []struct {
		ID           int    `yaml:"id"`
		InternalID   int    `yaml:"internal_id"`
		ExternalID   string `yaml:"external_id"`
		GlobalNumber string `yaml:"global_number"`
		ClientKey    string `yaml:"client_key"`
		Product      string `yaml:"product"`
		Due          string `yaml:"due"`
		MaxPayment   string `yaml:"max_payment"`
	} `yaml:"loans"`
	Savings []struct {
		ID        int    `yaml:"id"`
		ClientKey string `yaml:"client_key"`
		Product   string `yaml:"product"`
	} `yaml:"savings"`
	Receipts []string `yaml:"receipts"`
}

// LoadFixture reads a YAML account fixture from disk.
func LoadFixture(path string) (*FixtureService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture builds a FixtureService from YAML bytes.
func ParseFixture(data []byte) (*FixtureService, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing fixture: %w", err)
	}

	svc := &FixtureService{KnownReceipts: make(map[string]bool)}
	for _, t := range file.PaymentTypes {
		svc.PaymentTypeList = append(svc.PaymentTypeList, models.PaymentType{ID: t.ID, Name: t.Name})
	}
	for _, t := range file.DisbursementTypes {
		svc.DisbursementTypeList = append(svc.DisbursementTypeList, models.PaymentType{ID: t.ID, Name: t.Name})
	}
	for _, l := range file.Loans {
		loan := FixtureLoan{
			ID:           l.ID,
			InternalID:   l.InternalID,
			ExternalID:   l.ExternalID,
			GlobalNumber: l.GlobalNumber,
			ClientKey:    l.ClientKey,
			Product:      l.Product,
		}
		if l.Due != "" {
			due, err := decimal.NewFromString(l.Due)
			if err != nil {
				return nil, fmt.Errorf("error parsing due for loan %d: %w", l.ID, err)
			}
			loan.Due = due
		}
		if l.MaxPayment != "" {
			max, err := decimal.NewFromString(l.MaxPayment)
			if err != nil {
				return nil, fmt.Errorf("error parsing max_payment for loan %d: %w", l.ID, err)
			}
			loan.MaxPayment = max
		}
		svc.Loans = append(svc.Loans, loan)
	}
	for _, s := range file.Savings {
		svc.Savings = append(svc.Savings, FixtureSavings{ID: s.ID, ClientKey: s.ClientKey, Product: s.Product})
	}
	for _, r := range file.Receipts {
		svc.KnownReceipts[r] = true
	}
	return svc, nil
}

func (s *FixtureService) LoanAccountByID(id int) (models.AccountRef, error) {
	for _, l := range s.Loans {
		if l.InternalID == id {
			return models.AccountRef{ID: l.ID}, nil
		}
	}
	return models.AccountRef{}, fmt.Errorf("loan with id %d: %w", id, ErrNotFound)
}

func (s *FixtureService) LoanAccountByExternalID(externalID string) (models.AccountRef, error) {
	for _, l := range s.Loans {
		if l.ExternalID == externalID {
			return models.AccountRef{ID: l.ID}, nil
		}
	}
	return models.AccountRef{}, fmt.Errorf("loan with external id %q: %w", externalID, ErrNotFound)
}

func (s *FixtureService) LoanAccountByGlobalNumber(globalNum string) (models.AccountRef, error) {
	for _, l := range s.Loans {
		if l.GlobalNumber == globalNum {
			return models.AccountRef{ID: l.ID}, nil
		}
	}
	return models.AccountRef{}, fmt.Errorf("loan with global number %q: %w", globalNum, ErrNotFound)
}

func (s *FixtureService) LoanAccount(clientKey, productShortName string) (models.AccountRef, error) {
	for _, l := range s.Loans {
		if l.ClientKey == clientKey && l.Product == productShortName {
			return models.AccountRef{ID: l.ID}, nil
		}
	}
	return models.AccountRef{}, fmt.Errorf("loan for client %q product %q: %w", clientKey, productShortName, ErrNotFound)
}

func (s *FixtureService) SavingsAccount(clientKey, productShortName string) (models.AccountRef, error) {
	for _, sv := range s.Savings {
		if sv.ClientKey == clientKey && sv.Product == productShortName {
			return models.AccountRef{ID: sv.ID}, nil
		}
	}
	return models.AccountRef{}, fmt.Errorf("savings for client %q product %q: %w", clientKey, productShortName, ErrNotFound)
}

func (s *FixtureService) TotalPaymentDue(account models.AccountRef) (decimal.Decimal, error) {
	for _, l := range s.Loans {
		if l.ID == account.ID {
			return l.Due, nil
		}
	}
	return decimal.Zero, fmt.Errorf("loan %d: %w", account.ID, ErrNotFound)
}

func (s *FixtureService) ValidatePayment(cumulative models.Payment) ([]models.InvalidPaymentReason, error) {
	for _, l := range s.Loans {
		if l.ID == cumulative.Account.ID && !l.MaxPayment.IsZero() && cumulative.Amount.GreaterThan(l.MaxPayment) {
			return []models.InvalidPaymentReason{models.ReasonInvalidPaymentAmount}, nil
		}
	}
	return nil, nil
}

func (s *FixtureService) ValidateDisbursement(cumulative models.Payment) ([]models.InvalidPaymentReason, error) {
	return s.ValidatePayment(cumulative)
}

func (s *FixtureService) ReceiptExists(receiptID string) (bool, error) {
	return s.KnownReceipts[receiptID], nil
}

func (s *FixtureService) PaymentTypes() ([]models.PaymentType, error) {
	return s.PaymentTypeList, nil
}

func (s *FixtureService) DisbursementTypes() ([]models.PaymentType, error) {
	return s.DisbursementTypeList, nil
}
