package stub

import (
	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seed fills the store with a small cafe: a menu, ten tables and two staff
// accounts (kasir/produksi, both password "password123").
func Seed(s *Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	menu := []struct {
		name, category string
		price          int64
	}{
		{"Nasi Goreng Spesial", "Makanan", 25000},
		{"Mie Goreng", "Makanan", 22000},
		{"Ayam Bakar", "Makanan", 30000},
		{"Sate Ayam", "Makanan", 28000},
		{"Es Teh Manis", "Minuman", 8000},
		{"Es Jeruk", "Minuman", 10000},
		{"Kopi Susu", "Minuman", 15000},
		{"Pisang Goreng", "Camilan", 12000},
		{"Tahu Isi", "Camilan", 10000},
	}
	for _, m := range menu {
		s.products = append(s.products, api.Product{
			ID:          uuid.New(),
			Name:        m.name,
			Category:    m.category,
			Price:       decimal.NewFromInt(m.price),
			IsAvailable: true,
		})
	}

	for n := 1; n <= 10; n++ {
		s.tables = append(s.tables, api.Table{
			ID:       uuid.New(),
			Number:   n,
			Capacity: 4,
			IsActive: true,
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.users = append(s.users,
		user{ID: uuid.New(), Username: "kasir", Role: "cashier", HashedPassword: string(hash)},
		user{ID: uuid.New(), Username: "produksi", Role: "production", HashedPassword: string(hash)},
	)
	return nil
}
