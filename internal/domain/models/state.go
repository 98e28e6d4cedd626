package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidImport indicates an import document that does not carry the
// minimum required collections.
var ErrInvalidImport = errors.New("invalid import document: customers and farms must be arrays")

// State is the aggregate root: the six collections that make up the books.
// Slice order is insertion order and only matters for display.
type State struct {
	Customers   []Customer   `json:"customers"`
	Farms       []Farm       `json:"farms"`
	Accounts    []Account    `json:"accounts"`
	Sales       []Sale       `json:"sales"`
	Receivables []Receivable `json:"receivables"`
	Vouchers    []Voucher    `json:"vouchers"`
}

// DefaultState returns the empty books with the two seed accounts every
// installation starts with.
func DefaultState() State {
	return State{
		Customers: []Customer{},
		Farms:     []Farm{},
		Accounts: []Account{
			{ID: 1, Name: "Cash in Hand", Type: AccountCash, InitialBalance: decimal.Zero},
			{ID: 2, Name: "Bank Account", Type: AccountBank, InitialBalance: decimal.Zero},
		},
		Sales:       []Sale{},
		Receivables: []Receivable{},
		Vouchers:    []Voucher{},
	}
}

// Normalize substitutes empty collections for missing ones and restores the
// seed accounts when the account list is absent or empty. Older snapshots
// predate the accounts collection, so loaders must never assume it is there.
func (s *State) Normalize() {
	if s.Customers == nil {
		s.Customers = []Customer{}
	}
	if s.Farms == nil {
		s.Farms = []Farm{}
	}
	if len(s.Accounts) == 0 {
		s.Accounts = DefaultState().Accounts
	}
	if s.Sales == nil {
		s.Sales = []Sale{}
	}
	if s.Receivables == nil {
		s.Receivables = []Receivable{}
	}
	if s.Vouchers == nil {
		s.Vouchers = []Voucher{}
	}
}

// Clone returns a deep copy of the state so readers never alias the slices a
// mutation might replace.
func (s State) Clone() State {
	out := State{
		Customers:   make([]Customer, len(s.Customers)),
		Farms:       make([]Farm, len(s.Farms)),
		Accounts:    make([]Account, len(s.Accounts)),
		Sales:       make([]Sale, len(s.Sales)),
		Receivables: make([]Receivable, len(s.Receivables)),
		Vouchers:    make([]Voucher, len(s.Vouchers)),
	}
	copy(out.Customers, s.Customers)
	copy(out.Farms, s.Farms)
	copy(out.Accounts, s.Accounts)
	copy(out.Sales, s.Sales)
	copy(out.Receivables, s.Receivables)
	copy(out.Vouchers, s.Vouchers)
	return out
}

// ParseImport validates and decodes a bulk-import document. The document is
// accepted only when customers and farms are JSON arrays; every other
// collection defaults to empty (or the seed accounts) when missing.
func ParseImport(data []byte) (State, error) {
	var shape struct {
		Customers json.RawMessage `json:"customers"`
		Farms     json.RawMessage `json:"farms"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return State{}, fmt.Errorf("parse import document: %w", err)
	}
	if !isJSONArray(shape.Customers) || !isJSONArray(shape.Farms) {
		return State{}, ErrInvalidImport
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode import document: %w", err)
	}
	st.Normalize()
	return st, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// Customer looks up a customer by id.
func (s State) Customer(id int) (Customer, bool) {
	for _, c := range s.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// Farm looks up a farm by id.
func (s State) Farm(id int) (Farm, bool) {
	for _, f := range s.Farms {
		if f.ID == id {
			return f, true
		}
	}
	return Farm{}, false
}

// Account looks up an account by id.
func (s State) Account(id int) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Sale looks up a sale by id.
func (s State) Sale(id int) (Sale, bool) {
	for _, sl := range s.Sales {
		if sl.ID == id {
			return sl, true
		}
	}
	return Sale{}, false
}

// Receivable looks up a receivable by id.
func (s State) Receivable(id int) (Receivable, bool) {
	for _, r := range s.Receivables {
		if r.ID == id {
			return r, true
		}
	}
	return Receivable{}, false
}

// NextCustomerID allocates the next customer id: max existing id plus one, or
// one for an empty collection. Ids are never reused once assigned, because the
// maximum only grows while a record is live and deletions never shrink ids
// already handed out within a session.
func (s State) NextCustomerID() int {
	max := 0
	for _, c := range s.Customers {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// NextFarmID allocates the next farm id.
func (s State) NextFarmID() int {
	max := 0
	for _, f := range s.Farms {
		if f.ID > max {
			max = f.ID
		}
	}
	return max + 1
}

// NextAccountID allocates the next account id.
func (s State) NextAccountID() int {
	max := 0
	for _, a := range s.Accounts {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

// NextSaleID allocates the next sale id.
func (s State) NextSaleID() int {
	max := 0
	for _, sl := range s.Sales {
		if sl.ID > max {
			max = sl.ID
		}
	}
	return max + 1
}

// NextReceivableID allocates the next receivable id.
func (s State) NextReceivableID() int {
	max := 0
	for _, r := range s.Receivables {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

// NextVoucherID allocates the next voucher id.
func (s State) NextVoucherID() int {
	max := 0
	for _, v := range s.Vouchers {
		if v.ID > max {
			max = v.ID
		}
	}
	return max + 1
}

// ValidDate reports whether the value is a well-formed calendar date.
func ValidDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}
