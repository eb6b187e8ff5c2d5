package status

import "time"

// Status is the canonical order status used across every view. The backend
// speaks the same Indonesian codes on the wire.
type Status string

const (
	Menunggu   Status = "MENUNGGU"   // waiting for cashier confirmation
	Diproses   Status = "DIPROSES"   // being prepared in the kitchen
	Siap       Status = "SIAP"       // ready to serve
	Selesai    Status = "SELESAI"    // served / finished
	Dibayar    Status = "DIBAYAR"    // paid at the cashier
	Dibatalkan Status = "DIBATALKAN" // cancelled
)

// DefaultEstimatedMinutes is the suggested preparation estimate offered to the
// operator when a production order moves to DIPROSES.
const DefaultEstimatedMinutes = 15

// Parse normalizes a raw wire value. Unknown values map to Menunggu so a
// schema drift on the backend can never break rendering.
func Parse(raw string) Status {
	s := Status(raw)
	switch s {
	case Menunggu, Diproses, Siap, Selesai, Dibayar, Dibatalkan:
		return s
	}
	return Menunggu
}

// Known reports whether raw is one of the canonical codes.
func Known(raw string) bool {
	switch Status(raw) {
	case Menunggu, Diproses, Siap, Selesai, Dibayar, Dibatalkan:
		return true
	}
	return false
}

// Projection is what a human sees for a status.
type Projection struct {
	Label   string
	Icon    string
	Message string
}

var projections = map[Status]Projection{
	Menunggu:   {Label: "Menunggu", Icon: "⏳", Message: "Menunggu konfirmasi kasir"},
	Diproses:   {Label: "Diproses", Icon: "🍳", Message: "Sedang diproses di dapur"},
	Siap:       {Label: "Siap", Icon: "🛎", Message: "Pesanan siap disajikan"},
	Selesai:    {Label: "Selesai", Icon: "✔", Message: "Pesanan telah selesai"},
	Dibayar:    {Label: "Dibayar", Icon: "💵", Message: "Pembayaran diterima"},
	Dibatalkan: {Label: "Dibatalkan", Icon: "✖", Message: "Pesanan dibatalkan"},
}

// Project is total: any input, including garbage, yields the Menunggu
// projection rather than an error.
func Project(raw string) Projection {
	if p, ok := projections[Status(raw)]; ok {
		return p
	}
	return projections[Menunggu]
}

// Next returns the statuses staff may request from the current one: the status
// itself (no-op edit) plus the forward-adjacent stage. Courtesy gating only;
// the server remains the authority.
func Next(s Status) []Status {
	switch s {
	case Menunggu:
		return []Status{Menunggu, Diproses}
	case Diproses:
		return []Status{Diproses, Siap}
	case Siap:
		return []Status{Siap, Selesai}
	case Selesai:
		return []Status{Selesai, Dibayar}
	default:
		// terminal states offer nothing new
		return []Status{s}
	}
}

// Terminal reports whether no further kitchen/cashier action applies.
func Terminal(s Status) bool {
	return s == Dibayar || s == Dibatalkan
}

// RemainingMinutes derives the countdown shown on production cards:
// estimated minutes minus elapsed minutes since the order was created,
// floored at zero. Always recomputed, never stored.
func RemainingMinutes(estimated int, createdAt, now time.Time) int {
	if estimated <= 0 {
		return 0
	}
	elapsed := int(now.Sub(createdAt).Minutes())
	remaining := estimated - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
