// Package audi imports Bank Audi statement exports: a tab-delimited text
// format and a spreadsheet format. Each credit row carries one loan payment
// whose account is embedded in the free-text description field.
package audi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/models"
)

// Logical columns shared by both Audi formats.
const (
	colTransDate     = 0
	colSerial        = 1
	colValueDate     = 2
	colReference     = 3
	colDebitOrCredit = 4
	colAmount        = 5
	colBalance       = 6
	colDescription   = 7
	maxCellNum       = 8
)

// Group loan account external IDs start with this prefix.
const groupPrefix = "GL"

// External IDs for accounts in Lebanese pounds start with this prefix.
const lbpPrefix = "LL"

var (
	globalAccountNumberPattern = regexp.MustCompile(`^PMTMAJ ([0-9]{15}) `)
	internalIDPattern          = regexp.MustCompile(`^PMTMAJ ([0-9]{7}) `)
	externalIDPattern          = regexp.MustCompile(`^PMTMAJ \w([AZC])([0-9]{5})[0-9 ]{3} `)
)

// AccountID extracts and classifies the account identifier embedded in a
// description field. Precedence: global account number, then internal ID,
// then external ID. The letter after the "PMTMAJ" marker's first code letter
// selects the external-ID flavor: "Z" is a group loan, so the group prefix is
// prepended; "C" is a loan in Lebanese pounds, so the LBP prefix is
// prepended; "A" is an individual loan and passes through unchanged. An empty
// return means no identifier could be extracted.
func AccountID(description string) string {
	if m := globalAccountNumberPattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}

	if m := internalIDPattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}

	if m := externalIDPattern.FindStringSubmatch(description); m != nil {
		switch m[1] {
		case "Z":
			return groupPrefix + " " + m[2]
		case "C":
			return lbpPrefix + " " + m[2]
		default:
			return m[2]
		}
	}

	return ""
}

// IsInternalID reports whether the classified identifier is the fixed-length
// internal database ID.
func IsInternalID(accountID string) bool {
	return len(accountID) == 7
}

// IsExternalID reports whether the classified identifier is a short external
// account code, possibly carrying a group-loan or LBP prefix.
func IsExternalID(accountID string) bool {
	return len(accountID) == 5 || strings.HasPrefix(accountID, groupPrefix) || strings.HasPrefix(accountID, lbpPrefix)
}

// core holds what both Audi importers share: the host service, the logger
// and the account lookup dispatch.
type core struct {
	service accounts.Service
	logger  *log.Logger
}

func (c *core) lookupAccount(accountID string) (models.AccountRef, error) {
	switch {
	case IsInternalID(accountID):
		id, err := strconv.Atoi(accountID)
		if err != nil {
			return models.AccountRef{}, fmt.Errorf("malformed internal id %q: %w", accountID, err)
		}
		return c.service.LoanAccountByID(id)
	case IsExternalID(accountID):
		return c.service.LoanAccountByExternalID(accountID)
	default:
		return c.service.LoanAccountByGlobalNumber(accountID)
	}
}

func (c *core) resolvePaymentType(name string) (models.PaymentType, bool) {
	types, err := c.service.PaymentTypes()
	if err != nil {
		c.logger.Error("failed to fetch payment types", "error", err)
		return models.PaymentType{}, false
	}
	return importer.FindPaymentType(types, name)
}

// validationMessage renders one host rejection reason in the Audi row-number
// message style.
func validationMessage(reason models.InvalidPaymentReason, rowNum int) string {
	switch reason {
	case models.ReasonInvalidDate,
		models.ReasonUnsupportedPaymentType,
		models.ReasonInvalidPaymentAmount,
		models.ReasonInvalidLoanState:
		return fmt.Sprintf("%s in row %d", reason.Message(), rowNum)
	default:
		return fmt.Sprintf("Invalid payment in row %d (reason unknown).", rowNum)
	}
}
