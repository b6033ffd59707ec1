package txbuilder

import (
	"fmt"
)

// MaxRecipients caps the receivers of one card transfer. The codec zips
// message amounts with outputs positionally, so an oversized transfer would
// not decode reliably on the other side.
const MaxRecipients = 40

// ValidationError reports a request rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// validateRecipients applies the pre-flight rules shared by card transfers:
// a bounded recipient count, at least one positive amount, and a transfer
// total within the spendable asset balance. Issuance by the deck owner
// creates cards rather than moving them and is exempt from the balance
// check.
func validateRecipients(recipients []Recipient, assetBalance uint64, issuance bool) error {
	if len(recipients) == 0 {
		return validationErrorf("no recipients")
	}
	if len(recipients) > MaxRecipients {
		return validationErrorf("%d recipients exceed the %d recipient limit",
			len(recipients), MaxRecipients)
	}
	var total uint64
	positive := false
	for _, recipient := range recipients {
		if recipient.Address == "" {
			return validationErrorf("recipient with an empty address")
		}
		if recipient.Amount > 0 {
			positive = true
		}
		total += recipient.Amount
	}
	if !positive {
		return validationErrorf("no recipient receives a positive amount")
	}
	if !issuance && total >= assetBalance {
		return validationErrorf("transfer of %d cards exceeds the %d card balance",
			total, assetBalance)
	}
	return nil
}
