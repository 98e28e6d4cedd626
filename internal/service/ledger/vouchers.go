package ledger

import (
	"fmt"

	"github.com/alrehman/poultrybooks/internal/domain/models"
)

// unknownName labels a party whose record no longer resolves. Lookups during
// voucher derivation are deliberately lenient: a missing reference yields a
// placeholder instead of aborting the transaction.
const unknownName = "Unknown"

// fallbackAccountName is used when a receipt's account cannot be resolved.
const fallbackAccountName = "Cash in Hand"

func customerName(st models.State, id int) string {
	if c, ok := st.Customer(id); ok {
		return c.Name
	}
	return unknownName
}

func farmName(st models.State, id int) string {
	if f, ok := st.Farm(id); ok {
		return f.Name
	}
	return unknownName
}

func receiptAccountName(st models.State, id int) string {
	if a, ok := st.Account(id); ok {
		return a.Name
	}
	return fallbackAccountName
}

// saleVoucherBody derives the mutable voucher fields for a sale; the voucher
// id is assigned separately on creation and preserved on update.
func saleVoucherBody(st models.State, sale models.Sale) models.Voucher {
	vehicleInfo := ""
	if sale.VehicleNumber != "" {
		vehicleInfo = fmt.Sprintf(" (%s)", sale.VehicleNumber)
	}
	name := customerName(st, sale.CustomerID)

	return models.Voucher{
		Date:          sale.Date,
		Description:   fmt.Sprintf("Sale #%d - %s%s", sale.ID, name, vehicleInfo),
		DebitAccount:  fmt.Sprintf("Customer - %s", name),
		CreditAccount: fmt.Sprintf("Sales - %s", farmName(st, sale.FarmID)),
		Amount:        sale.Total,
		RelatedID:     sale.ID,
		RelatedType:   models.RelatedSale,
	}
}

// receivableVoucherBody derives the mutable voucher fields for a receipt.
func receivableVoucherBody(st models.State, r models.Receivable) models.Voucher {
	name := customerName(st, r.CustomerID)

	return models.Voucher{
		Date:          r.Date,
		Description:   fmt.Sprintf("Receipt #%d - %s", r.ID, name),
		DebitAccount:  receiptAccountName(st, r.AccountID),
		CreditAccount: fmt.Sprintf("Customer - %s", name),
		Amount:        r.Amount,
		RelatedID:     r.ID,
		RelatedType:   models.RelatedReceivable,
	}
}

// syncVoucher updates the voucher paired with (relatedID, relatedType) in
// place, or appends a fresh one when the pairing is missing. Re-creating the
// missing voucher keeps the derived ledger convergent even when an imported
// snapshot dropped it.
func syncVoucher(st *models.State, body models.Voucher) models.Voucher {
	for i, v := range st.Vouchers {
		if v.RelatedID == body.RelatedID && v.RelatedType == body.RelatedType {
			body.ID = v.ID
			st.Vouchers[i] = body
			return body
		}
	}
	body.ID = st.NextVoucherID()
	st.Vouchers = append(st.Vouchers, body)
	return body
}

// dropVouchersFor removes every voucher related to the given transactions.
func dropVouchersFor(st *models.State, related models.RelatedType, ids map[int]bool) {
	if len(ids) == 0 {
		return
	}
	kept := st.Vouchers[:0]
	for _, v := range st.Vouchers {
		if v.RelatedType == related && ids[v.RelatedID] {
			continue
		}
		kept = append(kept, v)
	}
	st.Vouchers = kept
}
