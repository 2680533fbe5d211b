package models

// InvalidPaymentReason is the host validator's rejection reason. The set is
// owned by the host and may grow, so message lookup keeps an explicit
// unknown-reason fallback.
type InvalidPaymentReason int

const (
	ReasonInvalidDate InvalidPaymentReason = iota
	ReasonUnsupportedPaymentType
	ReasonInvalidPaymentAmount
	ReasonInvalidLoanState
)

var reasonMessages = map[InvalidPaymentReason]string{
	ReasonInvalidDate:            "Invalid transaction date",
	ReasonUnsupportedPaymentType: "Unsupported payment type",
	ReasonInvalidPaymentAmount:   "Invalid payment amount",
	ReasonInvalidLoanState:       "Invalid account state",
}

// Message returns the user-facing text for a rejection reason.
func (r InvalidPaymentReason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Invalid payment (reason unknown)"
}
