package utils

import (
	"fmt"
	"time"
)

// AccrualReferenceID derives the ledger reference for one day's interest on
// one investment. The value is a pure function of (run date, account,
// investment), so replaying the same day against the same position produces
// the same reference and trips the unique index instead of crediting twice.
func AccrualReferenceID(runDate time.Time, accountID, investmentID uint) string {
	return fmt.Sprintf("ACR-%s-%d-%d", runDate.Format("20060102"), accountID, investmentID)
}

// FlatAccrualReferenceID is the flat-rate variant: one reference per account
// per day, with no investment component.
func FlatAccrualReferenceID(runDate time.Time, accountID uint) string {
	return fmt.Sprintf("ACR-%s-%d-FLAT", runDate.Format("20060102"), accountID)
}
