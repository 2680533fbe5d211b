package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRef is an opaque handle to a host-side account. It is comparable so
// it can key the cumulative-total map for one import batch.
type AccountRef struct {
	ID int
}

// PaymentType is one entry of the host's configured payment type registry.
type PaymentType struct {
	ID   int
	Name string
}

// TransactionKind distinguishes repayments from loan disbursals.
type TransactionKind int

const (
	KindPayment TransactionKind = iota
	KindDisbursal
)

func (k TransactionKind) String() string {
	if k == KindDisbursal {
		return "disbursal"
	}
	return "payment"
}

// Payment is one parsed transaction, ready for the host apply step. Amounts
// are exact decimals; cell text parses straight into them, never through a
// float.
type Payment struct {
	Account AccountRef
	Amount  decimal.Decimal
	Date    time.Time
	Type    PaymentType
	Comment string
	Receipt string
	Kind    TransactionKind

	// AllowOverpayments mirrors the host payment option of the same name.
	AllowOverpayments bool
}

// ParseResult is the outcome of parsing one statement file.
type ParseResult struct {
	Errors   []string
	Ignored  []string
	Payments []Payment

	RowsRead    int
	IgnoredRows int
	ErroredRows int
	SuccessRows int

	TotalImported  decimal.Decimal
	TotalDisbursed decimal.Decimal
}

// PaymentsByKind partitions the parsed payments for the host, which applies
// repayments and disbursals through different APIs.
func (r *ParseResult) PaymentsByKind() (payments, disbursals []Payment) {
	for _, p := range r.Payments {
		if p.Kind == KindDisbursal {
			disbursals = append(disbursals, p)
		} else {
			payments = append(payments, p)
		}
	}
	return payments, disbursals
}
