// Seed CLI: writes a demo booklet with its satellite content into the
// content table and publishes it behind a PIN, for local development and
// smoke testing.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"welcome-keys/internal/domain"
	"welcome-keys/internal/repository"
	"welcome-keys/internal/usecase"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		table string
		pin   string
		id    string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed and publish a demo welcome booklet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return fmt.Errorf("load AWS config: %w", err)
			}
			store, err := repository.New(awsdynamodb.NewFromConfig(cfg), table)
			if err != nil {
				return err
			}

			code := usecase.NormalizePin(pin)
			if code == "" {
				return fmt.Errorf("pin must not be empty")
			}
			if err := seed(ctx, store, id, code); err != nil {
				return err
			}
			fmt.Printf("booklet %s published with PIN %s\n", id, code)
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "welcome-keys-content", "DynamoDB content table name")
	cmd.Flags().StringVar(&pin, "pin", "DEMO42", "guest PIN to publish under")
	cmd.Flags().StringVar(&id, "id", "demo-booklet", "booklet id")
	return cmd
}

func seed(ctx context.Context, store *repository.Client, bookletID, code string) error {
	if err := store.PutWifiCredential(ctx, domain.WifiCredential{
		BookletID: bookletID,
		SSID:      "LesOliviersGuest",
		Password:  "bienvenue-2026",
	}); err != nil {
		return err
	}

	if err := store.PutEquipmentItem(ctx, domain.EquipmentItem{
		ID:        "dishwasher",
		BookletID: bookletID,
		Name:      "Lave-vaisselle",
		Category:  "Cuisine",
		Steps: []domain.EquipmentStep{
			{ID: "1", Text: "Ajoutez une pastille dans le bac."},
			{ID: "2", Text: "Sélectionnez le programme Eco puis appuyez sur Start."},
		},
	}); err != nil {
		return err
	}

	faq := []domain.FaqEntry{
		{BookletID: bookletID, Question: "Où laisser les clés au départ ?", Answer: "Dans la boîte à clés, code identique à l'arrivée.", OrderIndex: 1},
		{BookletID: bookletID, Question: "Le linge de maison est-il fourni ?", Answer: "Oui, draps et serviettes sont fournis.", OrderIndex: 2},
	}
	for _, entry := range faq {
		if err := store.PutFaqEntry(ctx, entry); err != nil {
			return err
		}
	}

	if err := store.PutNearbyPlace(ctx, domain.NearbyPlace{
		ID:        "boulangerie",
		BookletID: bookletID,
		Name:      "Boulangerie du Port",
		Category:  "Commerce",
		Distance:  "300 m",
		MapsURL:   "https://maps.example.com/boulangerie-du-port",
	}); err != nil {
		return err
	}

	// Published last, and atomically with its PIN mapping.
	return store.PublishBooklet(ctx, domain.Booklet{
		ID:              bookletID,
		PropertyName:    "Les Oliviers",
		Tagline:         "Votre pied-à-terre face à la mer",
		PropertyAddress: "12 rue du Port, 06600 Antibes",
		PropertyType:    "Appartement",
		WelcomeMessage:  "Bienvenue aux Oliviers ! Ce livret contient tout ce qu'il faut pour votre séjour.",
		CheckInTime:     "16:00",
		CheckOutTime:    "11:00",
		AccessCode:      "1234A",
		ParkingInfo:     "Place n°8 au sous-sol.",
		HouseRules:      "Pas de fêtes. Merci de ne pas fumer à l'intérieur.",
		EmergencyContacts: []string{
			"Conciergerie : +33 6 00 00 00 00",
			"Urgences européennes : 112",
		},
		Amenities:         []string{"Climatisation", "Lave-vaisselle", "Wi-Fi"},
		WasteInstructions: "Conteneurs au rez-de-chaussée, tri sélectif jaune/vert.",
		ChatbotEnabled:    true,
		ChatbotConfig: domain.ChatbotConfig{
			WelcomeMessage: "Bonjour ! Posez-moi vos questions sur le logement.",
			Suggestions:    []string{"Quelle est l'heure de départ ?", "Où se garer ?"},
		},
	}, code)
}
