package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeOpeningDeposit TransactionType = "opening_deposit"
	TransactionTypeInterestCredit TransactionType = "interest_credit"
	TransactionTypeTransferIn     TransactionType = "transfer_in"
	TransactionTypeTransferOut    TransactionType = "transfer_out"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	AccountID           int64           `db:"account_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}

// TransferResult summarizes a completed transfer from the sender's view.
type TransferResult struct {
	Amount      int64 `json:"amount"`
	ToAccountID int64 `json:"to_account_id"`
	NewBalance  int64 `json:"new_balance"`
}
