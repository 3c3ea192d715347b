package main

import (
	"fmt"
	"io"
	"os"

	"github.com/skyyield/skyyield/pkg/crypto"
)

// Signs a webhook payload with a shared secret so deliveries can be
// replayed against a local server. The payload is read from stdin.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/hmac/main.go <secret_key> < payload.json")
		os.Exit(1)
	}

	secretKey := os.Args[1]

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Printf("failed to read payload: %v\n", err)
		os.Exit(1)
	}

	signature := crypto.ComputeHMAC256(payload, secretKey)

	fmt.Println()
	fmt.Printf("Payload bytes: %d\n", len(payload))
	fmt.Printf("Signature: %s\n", signature)
	fmt.Println()
	fmt.Printf("curl -X POST -H 'X-Tipalti-Signature: %s' --data-binary @payload.json http://localhost:8080/webhooks/tipalti\n", signature)
}
