package main

import (
	"log"
	"net/http"

	"github.com/caffe-tetangga/pos-client/internal/config"
	"github.com/caffe-tetangga/pos-client/internal/stub"
)

func main() {
	cfg := config.Load()

	store := stub.NewStore()
	if err := stub.Seed(store); err != nil {
		log.Fatalf("seed: %v", err)
	}

	srv := stub.NewServer(store, cfg.JWTSecret)

	log.Printf("Stub API listening on :%s (login: kasir/password123, produksi/password123)", cfg.StubPort)
	if err := http.ListenAndServe(":"+cfg.StubPort, srv.Router()); err != nil {
		log.Fatal(err)
	}
}
