package checkout

import (
	"strconv"
	"time"

	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/utils"
)

// ReceiptLine is one label/value row of a printed receipt.
type ReceiptLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Receipt is the printable view of a committed sale.
type Receipt struct {
	SaleID   uint          `json:"sale_id"`
	Date     string        `json:"date"`
	Lines    []ReceiptLine `json:"lines"`
	Customer []ReceiptLine `json:"customer"`
}

// NewReceipt lays out a sale whose Product and Customer are loaded, dated in
// loc. The tax line uses the rate stored on the sale, not the current
// setting.
func NewReceipt(sale models.Sale, loc *time.Location) Receipt {
	if loc == nil {
		loc = time.UTC
	}
	lines := []ReceiptLine{
		{Label: "Product", Value: sale.Product.Name},
		{Label: "Price", Value: utils.FormatCurrency(sale.UnitPrice)},
		{Label: "Quantity", Value: strconv.Itoa(sale.Quantity)},
		{Label: "Subtotal", Value: utils.FormatCurrency(sale.Subtotal)},
	}
	if sale.DiscountAmount.IsPositive() {
		lines = append(lines, ReceiptLine{Label: "Discount", Value: "-" + utils.FormatCurrency(sale.DiscountAmount)})
	}
	lines = append(lines,
		ReceiptLine{Label: "Tax (" + utils.FormatPercent(sale.TaxRate) + ")", Value: utils.FormatCurrency(sale.TaxAmount)},
		ReceiptLine{Label: "Total", Value: utils.FormatCurrency(sale.Total)},
	)

	customer := []ReceiptLine{{Label: "Name", Value: sale.Customer.Name}}
	if sale.Customer.Email != "" {
		customer = append(customer, ReceiptLine{Label: "Email", Value: sale.Customer.Email})
	}
	if sale.Customer.Phone != "" {
		customer = append(customer, ReceiptLine{Label: "Phone", Value: sale.Customer.Phone})
	}

	return Receipt{
		SaleID:   sale.ID,
		Date:     sale.SaleDate.In(loc).Format("2006-01-02 15:04"),
		Lines:    lines,
		Customer: customer,
	}
}
