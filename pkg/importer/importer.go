package importer

import (
	"strings"

	"github.com/openmf/bankimport/pkg/models"
)

// Importer is one provider-specific statement import plugin. Parse never
// returns a Go error: structural failures become the single entry of the
// result's error list, row failures become per-row entries, and parsing
// always continues with the next row after a row-level problem.
type Importer interface {
	DisplayName() string
	Parse(data []byte) *models.ParseResult
}

// FindPaymentType resolves a payment type display name against the host's
// configured list. Matching is case-insensitive and tolerates the statement
// carrying only a fragment of the configured name. The last match wins when
// several names contain the fragment.
func FindPaymentType(types []models.PaymentType, name string) (models.PaymentType, bool) {
	var found models.PaymentType
	var ok bool
	needle := strings.ToLower(name)
	for _, t := range types {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			found = t
			ok = true
		}
	}
	return found, ok
}
