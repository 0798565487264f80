package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"welcome-keys/internal/domain"
	"welcome-keys/internal/usecase"
)

// BundleResolver is the resolver surface the booklet endpoint needs.
type BundleResolver interface {
	ResolveByPin(ctx context.Context, rawCode string) (domain.ContentBundle, error)
}

// BookletHandler serves GET /booklet-by-pin/{code}.
type BookletHandler struct {
	resolver BundleResolver
}

func NewBookletHandler(resolver BundleResolver) (*BookletHandler, error) {
	if resolver == nil {
		return nil, errors.New("handler: resolver must not be nil")
	}
	return &BookletHandler{resolver: resolver}, nil
}

type equipmentStepDTO struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type equipmentDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Category  string             `json:"category"`
	Steps     []equipmentStepDTO `json:"steps"`
	ManualURL string             `json:"manualUrl,omitempty"`
}

type faqDTO struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	OrderIndex int    `json:"orderIndex"`
}

type nearbyDTO struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Distance string `json:"distance,omitempty"`
	MapsURL  string `json:"mapsUrl,omitempty"`
}

type chatbotConfigDTO struct {
	WelcomeMessage string   `json:"welcomeMessage"`
	Suggestions    []string `json:"suggestions"`
}

// bookletDTO is the guest-facing projection. There is intentionally no
// password field anywhere in this shape.
type bookletDTO struct {
	ID                string           `json:"id"`
	PropertyName      string           `json:"propertyName"`
	Tagline           string           `json:"tagline,omitempty"`
	PropertyAddress   string           `json:"propertyAddress"`
	PropertyType      string           `json:"propertyType"`
	WelcomeMessage    string           `json:"welcomeMessage"`
	CoverImageURL     string           `json:"coverImageUrl,omitempty"`
	CheckInTime       string           `json:"checkInTime"`
	CheckOutTime      string           `json:"checkOutTime"`
	CheckInProcedure  string           `json:"checkInProcedure,omitempty"`
	CheckOutProcedure string           `json:"checkOutProcedure,omitempty"`
	AccessCode        string           `json:"accessCode,omitempty"`
	ParkingInfo       string           `json:"parkingInfo,omitempty"`
	HouseRules        string           `json:"houseRules"`
	SafetyInfo        string           `json:"safetyInfo,omitempty"`
	EmergencyContacts []string         `json:"emergencyContacts"`
	Amenities         []string         `json:"amenities"`
	WasteInstructions string           `json:"wasteInstructions,omitempty"`
	CleaningNotes     string           `json:"cleaningNotes,omitempty"`
	Gallery           []string         `json:"gallery"`
	LegalNotice       string           `json:"legalNotice,omitempty"`
	WifiSSID          string           `json:"wifiSsid,omitempty"`
	Equipment         []equipmentDTO   `json:"equipment"`
	Faq               []faqDTO         `json:"faq"`
	NearbyPlaces      []nearbyDTO      `json:"nearbyPlaces"`
	ChatbotEnabled    bool             `json:"chatbotEnabled"`
	ChatbotConfig     chatbotConfigDTO `json:"chatbotConfig"`
}

type bookletResponse struct {
	Booklet bookletDTO `json:"booklet"`
}

func (h *BookletHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)

	code := event.PathParameters["code"]
	if code == "" {
		status, body := errorFor(usecase.NewInvalidInput("missing_code"), usecase.LocaleFrench)
		return jsonResponse(status, cacheNoStore, corrID, body)
	}

	bundle, err := h.resolver.ResolveByPin(ctx, code)
	if err != nil {
		status, body := errorFor(err, usecase.LocaleFrench)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "booklet resolution failed", "correlationId", corrID, "err", err)
		}
		return jsonResponse(status, cacheNoStore, corrID, body)
	}

	return jsonResponse(http.StatusOK, cacheBooklet, corrID, bookletResponse{Booklet: toBookletDTO(bundle)})
}

func toBookletDTO(bundle domain.ContentBundle) bookletDTO {
	b := bundle.Booklet

	equipment := make([]equipmentDTO, 0, len(bundle.Equipment))
	for _, eq := range bundle.Equipment {
		steps := make([]equipmentStepDTO, 0, len(eq.Steps))
		for _, step := range eq.Steps {
			steps = append(steps, equipmentStepDTO{ID: step.ID, Text: step.Text})
		}
		equipment = append(equipment, equipmentDTO{
			ID:        eq.ID,
			Name:      eq.Name,
			Category:  eq.Category,
			Steps:     steps,
			ManualURL: eq.ManualURL,
		})
	}

	faq := make([]faqDTO, 0, len(bundle.Faq))
	for _, entry := range bundle.Faq {
		faq = append(faq, faqDTO{Question: entry.Question, Answer: entry.Answer, OrderIndex: entry.OrderIndex})
	}

	nearby := make([]nearbyDTO, 0, len(bundle.Nearby))
	for _, place := range bundle.Nearby {
		nearby = append(nearby, nearbyDTO{Name: place.Name, Category: place.Category, Distance: place.Distance, MapsURL: place.MapsURL})
	}

	return bookletDTO{
		ID:                b.ID,
		PropertyName:      b.PropertyName,
		Tagline:           b.Tagline,
		PropertyAddress:   b.PropertyAddress,
		PropertyType:      b.PropertyType,
		WelcomeMessage:    b.WelcomeMessage,
		CoverImageURL:     b.CoverImageURL,
		CheckInTime:       b.CheckInTime,
		CheckOutTime:      b.CheckOutTime,
		CheckInProcedure:  b.CheckInProcedure,
		CheckOutProcedure: b.CheckOutProcedure,
		AccessCode:        b.AccessCode,
		ParkingInfo:       b.ParkingInfo,
		HouseRules:        b.HouseRules,
		SafetyInfo:        b.SafetyInfo,
		EmergencyContacts: b.EmergencyContacts,
		Amenities:         b.Amenities,
		WasteInstructions: b.WasteInstructions,
		CleaningNotes:     b.CleaningNotes,
		Gallery:           b.Gallery,
		LegalNotice:       b.LegalNotice,
		WifiSSID:          bundle.WifiSSID,
		Equipment:         equipment,
		Faq:               faq,
		NearbyPlaces:      nearby,
		ChatbotEnabled:    b.ChatbotEnabled,
		ChatbotConfig: chatbotConfigDTO{
			WelcomeMessage: b.ChatbotConfig.WelcomeMessage,
			Suggestions:    b.ChatbotConfig.Suggestions,
		},
	}
}
