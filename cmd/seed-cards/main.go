// seed-cards loads a JSON file of prepaid cards into the cards collection.
//
// Usage: seed-cards -file cards.json
// The file holds an array of {provider, value, pointsRequired, code, serial}.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"

	"github.com/greenhabit/greenpoints-backend/internal/config"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/service"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	file := flag.String("file", "cards.json", "path to the card list")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}
	var cards []service.CardInput
	if err := json.Unmarshal(raw, &cards); err != nil {
		return fmt.Errorf("parse %s: %w", *file, err)
	}
	if len(cards) == 0 {
		return fmt.Errorf("%s holds no cards", *file)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID})
	if err != nil {
		return fmt.Errorf("firebase init: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("firestore init: %w", err)
	}
	defer client.Close()

	svc := service.NewCardService(repository.NewCardRepository(store.NewFirestore(client)))
	ids, err := svc.AddBulk(ctx, cards)
	if err != nil {
		return fmt.Errorf("insert cards (%d done): %w", len(ids), err)
	}

	log.Printf("inserted %d cards", len(ids))
	return nil
}
