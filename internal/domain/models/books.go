package models

import "github.com/shopspring/decimal"

// DateLayout is the calendar-date format used across the books. Dates are
// stored as plain strings and compared lexicographically, which is equivalent
// to chronological order for this layout.
const DateLayout = "2006-01-02"

// Customer is a buyer the business sells to on credit.
type Customer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Farm is a stock source: a shed or supplier lot of birds available for sale.
type Farm struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	InitialStock int    `json:"initialStock"`
}

// AccountType categorizes financial accounts.
type AccountType string

const (
	AccountCash  AccountType = "cash"
	AccountBank  AccountType = "bank"
	AccountOther AccountType = "other"
)

// IsValid reports whether the value is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountCash, AccountBank, AccountOther:
		return true
	}
	return false
}

// Account is a financial account receipts are deposited into.
type Account struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// Sale is a single dispatch of birds to a customer. Total is always derived
// from Weight and Rate, never set independently.
type Sale struct {
	ID            int             `json:"id"`
	Date          string          `json:"date"`
	CustomerID    int             `json:"customerId"`
	FarmID        int             `json:"farmId"`
	VehicleNumber string          `json:"vehicleNumber,omitempty"`
	Crates        int             `json:"crates,omitempty"`
	Chickens      int             `json:"chickens"`
	Weight        decimal.Decimal `json:"weight"`
	Rate          decimal.Decimal `json:"rate"`
	Total         decimal.Decimal `json:"total"`
}

// Receivable is a cash receipt from a customer. AccountID is optional; zero
// means the receiving account was not specified and name resolution falls
// back to the cash account at voucher-derivation time.
type Receivable struct {
	ID         int             `json:"id"`
	Date       string          `json:"date"`
	CustomerID int             `json:"customerId"`
	AccountID  int             `json:"accountId,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// RelatedType links a voucher back to the transaction that produced it.
type RelatedType string

const (
	RelatedSale       RelatedType = "sale"
	RelatedReceivable RelatedType = "receivable"
)

// Voucher is a derived double-entry journal record mirroring a sale or a
// receipt. A voucher with an empty RelatedType is a manual, unlinked entry
// (only reachable through import; the ledger never creates one).
type Voucher struct {
	ID            int             `json:"id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	DebitAccount  string          `json:"debitAccount"`
	CreditAccount string          `json:"creditAccount"`
	Amount        decimal.Decimal `json:"amount"`
	RelatedID     int             `json:"relatedId,omitempty"`
	RelatedType   RelatedType     `json:"relatedType,omitempty"`
}

// IsManual reports whether the voucher is not tied to any transaction.
func (v Voucher) IsManual() bool {
	return v.RelatedType == ""
}
