package invoice

import "encoding/json"

// The JSON shape mirrors the renderer template variables:
// seller, customer, invoice_meta, items, totals, bank_details.

type sellerJSON struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Email   *string `json:"email"`
	Mobile  *string `json:"mobile"`
	PAN     *string `json:"pan"`
	GST     *string `json:"gst"`
}

type customerJSON struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	GST     *string `json:"gst"`
	DLNo    *string `json:"dl_no"`
}

type metaJSON struct {
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`
	InvoiceGroup  *string `json:"invoice_group"`
}

type itemJSON struct {
	PartName   string  `json:"part_name"`
	HSNCode    *string `json:"hsn_code"`
	BatchNo    *string `json:"batch_no"`
	Expiry     *string `json:"expiry"`
	MRP        float64 `json:"mrp"`
	Qty        float64 `json:"qty"`
	FreeQty    float64 `json:"free_qty"`
	Rate       float64 `json:"rate"`
	Amount     float64 `json:"amount"`
	GSTPercent float64 `json:"gst_percent"`
}

type totalsJSON struct {
	BasicTotal        float64 `json:"basic_total"`
	DiscountTotal     float64 `json:"discount_total"`
	TaxableTotal      float64 `json:"taxable_total"`
	InvoiceTotal      float64 `json:"invoice_total"`
	InvoiceTotalWords *string `json:"invoice_total_words"`
}

type bankJSON struct {
	BankName    string  `json:"bank_name"`
	AccountName *string `json:"account_name"`
	IFSC        *string `json:"ifsc"`
	AccountNo   *string `json:"account_no"`
	UPI         *string `json:"upi"`
}

type invoiceJSON struct {
	Seller      sellerJSON   `json:"seller"`
	Customer    customerJSON `json:"customer"`
	InvoiceMeta metaJSON     `json:"invoice_meta"`
	Items       []itemJSON   `json:"items"`
	Totals      totalsJSON   `json:"totals"`
	BankDetails *bankJSON    `json:"bank_details"`
}

// MarshalJSON encodes the invoice with snake_case keys; absent optional fields
// are encoded as null.
func (i *Invoice) MarshalJSON() ([]byte, error) {
	out := invoiceJSON{
		Seller: sellerJSON{
			Name:    i.seller.p.Name,
			Address: i.seller.p.Address,
			Email:   nullable(i.seller.p.Email),
			Mobile:  nullable(i.seller.p.Mobile),
			PAN:     nullable(i.seller.p.PAN),
			GST:     nullable(i.seller.p.GST),
		},
		Customer: customerJSON{
			Name:    i.customer.p.Name,
			Address: i.customer.p.Address,
			City:    nullable(i.customer.p.City),
			State:   nullable(i.customer.p.State),
			GST:     nullable(i.customer.p.GST),
			DLNo:    nullable(i.customer.p.DLNo),
		},
		InvoiceMeta: metaJSON{
			InvoiceNumber: i.meta.p.InvoiceNumber,
			InvoiceDate:   i.meta.p.InvoiceDate.Format(DateLayout),
			InvoiceGroup:  nullable(i.meta.p.InvoiceGroup),
		},
		Items: make([]itemJSON, 0, len(i.items)),
		Totals: totalsJSON{
			BasicTotal:        i.totals.p.BasicTotal,
			DiscountTotal:     i.totals.p.DiscountTotal,
			TaxableTotal:      i.totals.p.TaxableTotal,
			InvoiceTotal:      i.totals.p.InvoiceTotal,
			InvoiceTotalWords: nullable(i.totals.p.InvoiceTotalWords),
		},
	}

	for _, item := range i.items {
		out.Items = append(out.Items, itemJSON{
			PartName:   item.p.PartName,
			HSNCode:    nullable(item.p.HSNCode),
			BatchNo:    nullable(item.p.BatchNo),
			Expiry:     nullable(item.p.Expiry),
			MRP:        item.p.MRP,
			Qty:        item.p.Qty,
			FreeQty:    item.p.FreeQty,
			Rate:       item.p.Rate,
			Amount:     item.p.Amount,
			GSTPercent: item.p.GSTPercent,
		})
	}

	if i.bank != nil {
		out.BankDetails = &bankJSON{
			BankName:    i.bank.p.BankName,
			AccountName: nullable(i.bank.p.AccountName),
			IFSC:        nullable(i.bank.p.IFSC),
			AccountNo:   nullable(i.bank.p.AccountNo),
			UPI:         nullable(i.bank.p.UPI),
		}
	}

	return json.Marshal(out)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
