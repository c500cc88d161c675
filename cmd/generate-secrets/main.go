package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/voyagehub/travel-backend/internal/utils"
)

func main() {
	withPayment := flag.Bool("payment", false, "also print a sandbox PAYMENT_SECRET_KEY")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for VoyageHub")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)

	if *withPayment {
		webhookKey, err := utils.GenerateSecret(32)
		if err != nil {
			log.Fatalf("Failed to generate payment key: %v", err)
		}
		fmt.Printf("PAYMENT_SECRET_KEY=sk_test_%s\n", webhookKey)
		fmt.Println("(sandbox only, use the key from the gateway dashboard in production)")
	}
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
