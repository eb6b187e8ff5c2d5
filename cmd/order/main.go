package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/config"
	"github.com/caffe-tetangga/pos-client/internal/order"
	"github.com/caffe-tetangga/pos-client/internal/session"
	"github.com/shopspring/decimal"
)

// order is the customer-facing ordering flow: validate a table, browse the
// menu, fill a cart, check out, then hand off to the track command.
func main() {
	tableFlag := flag.String("table", "", "table number (as printed on the QR card)")
	flag.Parse()

	cfg := config.Load()
	sess := session.NewStore()
	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, sess)
	flow := order.NewSession(client)

	in := bufio.NewScanner(os.Stdin)

	// Table first; ordering stays locked until one validates.
	input := *tableFlag
	for {
		if input == "" {
			fmt.Print("Nomor meja: ")
			if !in.Scan() {
				return
			}
			input = in.Text()
		}
		table, err := flow.ValidateTable(context.Background(), input)
		if err != nil {
			fmt.Printf("%v\n", err)
			input = ""
			continue
		}
		fmt.Printf("Meja %d berhasil divalidasi!\n", table.Number)
		break
	}

	products := loadMenu(client)
	printMenu(products)

	fmt.Println("commands: a <n> (tambah) | d <n> (kurang) | n <n> <catatan> | cart | co (checkout) | q")
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "q":
			return
		case "a", "d", "n":
			applyCartCommand(flow, products, fields)
		case "cart":
			printCart(flow)
		case "co":
			created, err := flow.Checkout(context.Background())
			if err != nil {
				fmt.Printf("%v\n", err)
				continue
			}
			fmt.Printf("Pesanan %s diterima! Lacak dengan:\n  track %s\n", created.OrderNumber, created.ID)
			return
		}
	}
}

func loadMenu(client *api.Client) []api.Product {
	ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
	defer cancel()
	page, err := client.Menu(ctx, 1, 100, "", "")
	if err != nil {
		log.Fatalf("load menu: %v", err)
	}
	return page.Items
}

func printMenu(products []api.Product) {
	fmt.Println("\n--- MENU ---")
	for i, p := range products {
		fmt.Printf("[%2d] %-24s %-10s %8s\n", i+1, p.Name, p.Category, p.Price.StringFixed(0))
	}
}

func applyCartCommand(flow *order.Session, products []api.Product, fields []string) {
	if len(fields) < 2 {
		fmt.Println("pilih nomor menu")
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(products) {
		fmt.Println("nomor menu tidak valid")
		return
	}
	p := products[n-1]

	switch fields[0] {
	case "a":
		flow.Cart().Add(p)
	case "d":
		flow.Cart().UpdateQuantity(p.ID, -1)
	case "n":
		flow.Cart().UpdateNotes(p.ID, strings.Join(fields[2:], " "))
	}
	printCart(flow)
}

func printCart(flow *order.Session) {
	items := flow.Cart().Items()
	if len(items) == 0 {
		fmt.Println("keranjang masih kosong")
		return
	}
	for _, it := range items {
		line := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Printf("  %dx %-24s %8s\n", it.Quantity, it.Product.Name, line.StringFixed(0))
		if it.Notes != "" {
			fmt.Printf("     catatan: %s\n", it.Notes)
		}
	}
	fmt.Printf("  %d item, TOTAL %s\n", flow.Cart().TotalItems(), flow.Cart().TotalPrice().StringFixed(0))
}
