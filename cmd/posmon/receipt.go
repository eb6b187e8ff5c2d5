package main

import (
	"fmt"
	"strings"

	"github.com/caffe-tetangga/pos-client/internal/api"
)

// renderReceipt formats the 80mm-style text receipt printed after payment.
func renderReceipt(rec *api.Receipt) string {
	var b strings.Builder
	divider := strings.Repeat("-", 32) + "\n"

	b.WriteString("\n      STRUK PEMBAYARAN\n")
	b.WriteString("       Caffe Tetangga\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "Order : %s\n", rec.OrderNumber)
	fmt.Fprintf(&b, "Meja  : %d\n", rec.TableNumber)
	when := rec.OrderedAt
	if rec.PaidAt != nil {
		when = *rec.PaidAt
	}
	fmt.Fprintf(&b, "Waktu : %s\n", when.Local().Format("02/01/2006 15:04"))
	b.WriteString(divider)
	for _, it := range rec.Items {
		fmt.Fprintf(&b, "%dx %-20s %8s\n", it.Quantity, it.ProductName, it.Subtotal.StringFixed(0))
		if it.Notes != "" {
			fmt.Fprintf(&b, "   catatan: %s\n", it.Notes)
		}
	}
	b.WriteString(divider)
	fmt.Fprintf(&b, "TOTAL: %24s\n", rec.TotalPrice.StringFixed(0))
	b.WriteString(divider)
	b.WriteString("Terima kasih atas kunjungan Anda!\n\n")
	return b.String()
}
