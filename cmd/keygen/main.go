package main

import (
	"fmt"
	"log"

	"github.com/skyyield/skyyield/pkg/crypto"
)

// Generates the shared secrets the server expects in its environment:
// the JWT signing key and one webhook secret per provider.
func main() {
	names := []string{
		"JWT_SECRET",
		"CALENDLY_WEBHOOK_SECRET",
		"ESIGN_WEBHOOK_TOKEN",
		"TIPALTI_WEBHOOK_SECRET",
	}

	fmt.Println("Generated secrets, copy these to your .env file:")
	fmt.Println()
	for _, name := range names {
		secret, err := crypto.GenerateSecret(32)
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Printf("%s=%s\n", name, secret)
	}
	fmt.Println()
	fmt.Println("Stripe and Clerk secrets come from the provider dashboards, not from this tool.")
}
