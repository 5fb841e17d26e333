package main

import (
	"log"

	"github.com/expiryguard/expiryguard/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ expiryguard failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ expiryguard exited: %v", err)
	}
}
