package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"welcome-keys/internal/domain"
)

const (
	skMeta        = "META#"
	skWifi        = "WIFI#"
	skPinMap      = "MAP#"
	skPrefixEquip = "EQUIP#"
	skPrefixFaq   = "FAQ#"
	skPrefixPlace = "PLACE#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Reader defines the content-store reads consumed by the resolver and chat
// services. Guest-path operations are read-only.
type Reader interface {
	GetPinMapping(ctx context.Context, code string) (domain.PinMapping, bool, error)
	GetBooklet(ctx context.Context, bookletID string) (domain.Booklet, bool, error)
	GetWifiCredential(ctx context.Context, bookletID string) (domain.WifiCredential, bool, error)
	ListEquipment(ctx context.Context, bookletID string) ([]domain.EquipmentItem, error)
	ListFaqEntries(ctx context.Context, bookletID string) ([]domain.FaqEntry, error)
	ListNearbyPlaces(ctx context.Context, bookletID string) ([]domain.NearbyPlace, error)
}

// Client wraps the single DynamoDB content table holding booklets, their
// satellite records and PIN mappings.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// pinPK returns the partition key for a PIN mapping.
func pinPK(code string) string {
	return "PIN#" + code
}

// bookletPK returns the partition key shared by a booklet and its satellites.
func bookletPK(bookletID string) string {
	return "BOOKLET#" + bookletID
}

// faqSK pads the order index so lexicographic SK order matches display order.
func faqSK(orderIndex int) string {
	return fmt.Sprintf("%s%04d", skPrefixFaq, orderIndex)
}

// GetPinMapping fetches the mapping row for a normalized code, whatever its
// status. Callers decide what a disabled mapping means for the guest.
func (c *Client) GetPinMapping(ctx context.Context, code string) (domain.PinMapping, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pinPK(code)},
			"SK": &types.AttributeValueMemberS{Value: skPinMap},
		},
	})
	if err != nil {
		return domain.PinMapping{}, false, fmt.Errorf("repository: GetPinMapping get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.PinMapping{}, false, nil
	}

	bookletID, err := strAttr(out.Item, "bookletId")
	if err != nil {
		return domain.PinMapping{}, false, fmt.Errorf("repository: GetPinMapping decode: %w", err)
	}
	status, err := strAttr(out.Item, "status")
	if err != nil {
		return domain.PinMapping{}, false, fmt.Errorf("repository: GetPinMapping decode: %w", err)
	}
	return domain.PinMapping{Code: code, BookletID: bookletID, Status: status}, true, nil
}

// GetBooklet fetches the booklet metadata record with whatever status it has.
// Publish-state filtering belongs to the resolver.
func (c *Client) GetBooklet(ctx context.Context, bookletID string) (domain.Booklet, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: bookletPK(bookletID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
	})
	if err != nil {
		return domain.Booklet{}, false, fmt.Errorf("repository: GetBooklet get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Booklet{}, false, nil
	}

	b, err := itemToBooklet(bookletID, out.Item)
	if err != nil {
		return domain.Booklet{}, false, fmt.Errorf("repository: GetBooklet decode: %w", err)
	}
	return b, true, nil
}

// GetWifiCredential fetches the network credentials for a booklet, if any.
func (c *Client) GetWifiCredential(ctx context.Context, bookletID string) (domain.WifiCredential, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: bookletPK(bookletID)},
			"SK": &types.AttributeValueMemberS{Value: skWifi},
		},
	})
	if err != nil {
		return domain.WifiCredential{}, false, fmt.Errorf("repository: GetWifiCredential get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.WifiCredential{}, false, nil
	}

	ssid, err := strAttr(out.Item, "ssid")
	if err != nil {
		return domain.WifiCredential{}, false, fmt.Errorf("repository: GetWifiCredential decode: %w", err)
	}
	password, err := strAttr(out.Item, "password")
	if err != nil {
		return domain.WifiCredential{}, false, fmt.Errorf("repository: GetWifiCredential decode: %w", err)
	}
	return domain.WifiCredential{BookletID: bookletID, SSID: ssid, Password: password}, true, nil
}

// querySatellites runs a SK-prefix query under a booklet partition in
// ascending key order.
func (c *Client) querySatellites(ctx context.Context, bookletID, skPrefix string) ([]map[string]types.AttributeValue, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: bookletPK(bookletID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefix},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ListEquipment returns the booklet's equipment in stable key order.
func (c *Client) ListEquipment(ctx context.Context, bookletID string) ([]domain.EquipmentItem, error) {
	items, err := c.querySatellites(ctx, bookletID, skPrefixEquip)
	if err != nil {
		return nil, fmt.Errorf("repository: ListEquipment query: %w", err)
	}
	equipment := make([]domain.EquipmentItem, 0, len(items))
	for _, item := range items {
		eq, err := itemToEquipment(bookletID, item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListEquipment decode: %w", err)
		}
		equipment = append(equipment, eq)
	}
	return equipment, nil
}

// ListFaqEntries returns FAQ entries ordered by orderIndex; the padded sort
// key makes DynamoDB return them already ordered.
func (c *Client) ListFaqEntries(ctx context.Context, bookletID string) ([]domain.FaqEntry, error) {
	items, err := c.querySatellites(ctx, bookletID, skPrefixFaq)
	if err != nil {
		return nil, fmt.Errorf("repository: ListFaqEntries query: %w", err)
	}
	entries := make([]domain.FaqEntry, 0, len(items))
	for _, item := range items {
		entry, err := itemToFaqEntry(bookletID, item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListFaqEntries decode: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListNearbyPlaces returns recommended places in stable key order.
func (c *Client) ListNearbyPlaces(ctx context.Context, bookletID string) ([]domain.NearbyPlace, error) {
	items, err := c.querySatellites(ctx, bookletID, skPrefixPlace)
	if err != nil {
		return nil, fmt.Errorf("repository: ListNearbyPlaces query: %w", err)
	}
	places := make([]domain.NearbyPlace, 0, len(items))
	for _, item := range items {
		place, err := itemToNearbyPlace(bookletID, item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListNearbyPlaces decode: %w", err)
		}
		places = append(places, place)
	}
	return places, nil
}

// PublishBooklet writes the booklet record with status=published and its
// active PIN mapping in one transaction, so a guest can never observe a
// published booklet without a working code or the reverse.
func (c *Client) PublishBooklet(ctx context.Context, b domain.Booklet, pinCode string) error {
	if strings.TrimSpace(b.ID) == "" {
		return errors.New("repository: PublishBooklet: booklet ID is required")
	}
	if strings.TrimSpace(pinCode) == "" {
		return errors.New("repository: PublishBooklet: pin code is required")
	}
	b.Status = domain.BookletStatusPublished

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName: aws.String(c.tableName),
					Item:      bookletItem(b),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(c.tableName),
					Item: map[string]types.AttributeValue{
						"PK":        &types.AttributeValueMemberS{Value: pinPK(pinCode)},
						"SK":        &types.AttributeValueMemberS{Value: skPinMap},
						"bookletId": &types.AttributeValueMemberS{Value: b.ID},
						"status":    &types.AttributeValueMemberS{Value: domain.PinStatusActive},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: PublishBooklet: %w", err)
	}
	return nil
}

// PutWifiCredential writes or replaces a booklet's network credentials.
func (c *Client) PutWifiCredential(ctx context.Context, cred domain.WifiCredential) error {
	if strings.TrimSpace(cred.BookletID) == "" {
		return errors.New("repository: PutWifiCredential: booklet ID is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":       &types.AttributeValueMemberS{Value: bookletPK(cred.BookletID)},
			"SK":       &types.AttributeValueMemberS{Value: skWifi},
			"ssid":     &types.AttributeValueMemberS{Value: cred.SSID},
			"password": &types.AttributeValueMemberS{Value: cred.Password},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: PutWifiCredential: %w", err)
	}
	return nil
}

// PutEquipmentItem writes or replaces one equipment record.
func (c *Client) PutEquipmentItem(ctx context.Context, eq domain.EquipmentItem) error {
	if strings.TrimSpace(eq.BookletID) == "" || strings.TrimSpace(eq.ID) == "" {
		return errors.New("repository: PutEquipmentItem: booklet ID and item ID are required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      equipmentItem(eq),
	})
	if err != nil {
		return fmt.Errorf("repository: PutEquipmentItem: %w", err)
	}
	return nil
}

// PutFaqEntry writes or replaces one FAQ entry keyed by its order index.
func (c *Client) PutFaqEntry(ctx context.Context, entry domain.FaqEntry) error {
	if strings.TrimSpace(entry.BookletID) == "" {
		return errors.New("repository: PutFaqEntry: booklet ID is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: bookletPK(entry.BookletID)},
			"SK":         &types.AttributeValueMemberS{Value: faqSK(entry.OrderIndex)},
			"question":   &types.AttributeValueMemberS{Value: entry.Question},
			"answer":     &types.AttributeValueMemberS{Value: entry.Answer},
			"orderIndex": &types.AttributeValueMemberN{Value: strconv.Itoa(entry.OrderIndex)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: PutFaqEntry: %w", err)
	}
	return nil
}

// PutNearbyPlace writes or replaces one nearby place record.
func (c *Client) PutNearbyPlace(ctx context.Context, place domain.NearbyPlace) error {
	if strings.TrimSpace(place.BookletID) == "" || strings.TrimSpace(place.ID) == "" {
		return errors.New("repository: PutNearbyPlace: booklet ID and place ID are required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":       &types.AttributeValueMemberS{Value: bookletPK(place.BookletID)},
			"SK":       &types.AttributeValueMemberS{Value: skPrefixPlace + place.ID},
			"name":     &types.AttributeValueMemberS{Value: place.Name},
			"category": &types.AttributeValueMemberS{Value: place.Category},
			"distance": &types.AttributeValueMemberS{Value: place.Distance},
			"mapsUrl":  &types.AttributeValueMemberS{Value: place.MapsURL},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: PutNearbyPlace: %w", err)
	}
	return nil
}

func bookletItem(b domain.Booklet) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":                 &types.AttributeValueMemberS{Value: bookletPK(b.ID)},
		"SK":                 &types.AttributeValueMemberS{Value: skMeta},
		"propertyName":       &types.AttributeValueMemberS{Value: b.PropertyName},
		"tagline":            &types.AttributeValueMemberS{Value: b.Tagline},
		"propertyAddress":    &types.AttributeValueMemberS{Value: b.PropertyAddress},
		"propertyType":       &types.AttributeValueMemberS{Value: b.PropertyType},
		"welcomeMessage":     &types.AttributeValueMemberS{Value: b.WelcomeMessage},
		"coverImageUrl":      &types.AttributeValueMemberS{Value: b.CoverImageURL},
		"checkInTime":        &types.AttributeValueMemberS{Value: b.CheckInTime},
		"checkOutTime":       &types.AttributeValueMemberS{Value: b.CheckOutTime},
		"checkInProcedure":   &types.AttributeValueMemberS{Value: b.CheckInProcedure},
		"checkOutProcedure":  &types.AttributeValueMemberS{Value: b.CheckOutProcedure},
		"accessCode":         &types.AttributeValueMemberS{Value: b.AccessCode},
		"parkingInfo":        &types.AttributeValueMemberS{Value: b.ParkingInfo},
		"houseRules":         &types.AttributeValueMemberS{Value: b.HouseRules},
		"safetyInfo":         &types.AttributeValueMemberS{Value: b.SafetyInfo},
		"emergencyContacts":  stringListAttr(b.EmergencyContacts),
		"amenities":          stringListAttr(b.Amenities),
		"wasteInstructions":  &types.AttributeValueMemberS{Value: b.WasteInstructions},
		"cleaningNotes":      &types.AttributeValueMemberS{Value: b.CleaningNotes},
		"gallery":            stringListAttr(b.Gallery),
		"legalNotice":        &types.AttributeValueMemberS{Value: b.LegalNotice},
		"chatbotEnabled":     &types.AttributeValueMemberBOOL{Value: b.ChatbotEnabled},
		"chatbotWelcome":     &types.AttributeValueMemberS{Value: b.ChatbotConfig.WelcomeMessage},
		"chatbotSuggestions": stringListAttr(b.ChatbotConfig.Suggestions),
		"status":             &types.AttributeValueMemberS{Value: b.Status},
	}
}

func equipmentItem(eq domain.EquipmentItem) map[string]types.AttributeValue {
	steps := make([]types.AttributeValue, 0, len(eq.Steps))
	for _, step := range eq.Steps {
		steps = append(steps, &types.AttributeValueMemberM{
			Value: map[string]types.AttributeValue{
				"id":   &types.AttributeValueMemberS{Value: step.ID},
				"text": &types.AttributeValueMemberS{Value: step.Text},
			},
		})
	}
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: bookletPK(eq.BookletID)},
		"SK":        &types.AttributeValueMemberS{Value: skPrefixEquip + eq.ID},
		"name":      &types.AttributeValueMemberS{Value: eq.Name},
		"category":  &types.AttributeValueMemberS{Value: eq.Category},
		"steps":     &types.AttributeValueMemberL{Value: steps},
		"manualUrl": &types.AttributeValueMemberS{Value: eq.ManualURL},
	}
}

func itemToBooklet(bookletID string, item map[string]types.AttributeValue) (domain.Booklet, error) {
	name, err := strAttr(item, "propertyName")
	if err != nil {
		return domain.Booklet{}, err
	}
	status, err := strAttr(item, "status")
	if err != nil {
		return domain.Booklet{}, err
	}

	return domain.Booklet{
		ID:                bookletID,
		PropertyName:      name,
		Tagline:           optStrAttr(item, "tagline"),
		PropertyAddress:   optStrAttr(item, "propertyAddress"),
		PropertyType:      optStrAttr(item, "propertyType"),
		WelcomeMessage:    optStrAttr(item, "welcomeMessage"),
		CoverImageURL:     optStrAttr(item, "coverImageUrl"),
		CheckInTime:       optStrAttr(item, "checkInTime"),
		CheckOutTime:      optStrAttr(item, "checkOutTime"),
		CheckInProcedure:  optStrAttr(item, "checkInProcedure"),
		CheckOutProcedure: optStrAttr(item, "checkOutProcedure"),
		AccessCode:        optStrAttr(item, "accessCode"),
		ParkingInfo:       optStrAttr(item, "parkingInfo"),
		HouseRules:        optStrAttr(item, "houseRules"),
		SafetyInfo:        optStrAttr(item, "safetyInfo"),
		EmergencyContacts: stringListValue(item, "emergencyContacts"),
		Amenities:         stringListValue(item, "amenities"),
		WasteInstructions: optStrAttr(item, "wasteInstructions"),
		CleaningNotes:     optStrAttr(item, "cleaningNotes"),
		Gallery:           stringListValue(item, "gallery"),
		LegalNotice:       optStrAttr(item, "legalNotice"),
		ChatbotEnabled:    boolAttr(item, "chatbotEnabled"),
		ChatbotConfig: domain.ChatbotConfig{
			WelcomeMessage: optStrAttr(item, "chatbotWelcome"),
			Suggestions:    stringListValue(item, "chatbotSuggestions"),
		},
		Status: status,
	}, nil
}

func itemToEquipment(bookletID string, item map[string]types.AttributeValue) (domain.EquipmentItem, error) {
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.EquipmentItem{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.EquipmentItem{}, err
	}

	var steps []domain.EquipmentStep
	if raw, ok := item["steps"].(*types.AttributeValueMemberL); ok {
		for _, el := range raw.Value {
			m, ok := el.(*types.AttributeValueMemberM)
			if !ok {
				return domain.EquipmentItem{}, errors.New("equipment step is not a map")
			}
			steps = append(steps, domain.EquipmentStep{
				ID:   optStrAttr(m.Value, "id"),
				Text: optStrAttr(m.Value, "text"),
			})
		}
	}

	return domain.EquipmentItem{
		ID:        strings.TrimPrefix(sk, skPrefixEquip),
		BookletID: bookletID,
		Name:      name,
		Category:  optStrAttr(item, "category"),
		Steps:     steps,
		ManualURL: optStrAttr(item, "manualUrl"),
	}, nil
}

func itemToFaqEntry(bookletID string, item map[string]types.AttributeValue) (domain.FaqEntry, error) {
	question, err := strAttr(item, "question")
	if err != nil {
		return domain.FaqEntry{}, err
	}
	answer, err := strAttr(item, "answer")
	if err != nil {
		return domain.FaqEntry{}, err
	}
	orderIndex, err := intAttr(item, "orderIndex")
	if err != nil {
		return domain.FaqEntry{}, err
	}
	return domain.FaqEntry{
		BookletID:  bookletID,
		Question:   question,
		Answer:     answer,
		OrderIndex: orderIndex,
	}, nil
}

func itemToNearbyPlace(bookletID string, item map[string]types.AttributeValue) (domain.NearbyPlace, error) {
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.NearbyPlace{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.NearbyPlace{}, err
	}
	return domain.NearbyPlace{
		ID:        strings.TrimPrefix(sk, skPrefixPlace),
		BookletID: bookletID,
		Name:      name,
		Category:  optStrAttr(item, "category"),
		Distance:  optStrAttr(item, "distance"),
		MapsURL:   optStrAttr(item, "mapsUrl"),
	}, nil
}

func stringListAttr(values []string) types.AttributeValue {
	list := make([]types.AttributeValue, 0, len(values))
	for _, v := range values {
		list = append(list, &types.AttributeValueMemberS{Value: v})
	}
	return &types.AttributeValueMemberL{Value: list}
}

func stringListValue(item map[string]types.AttributeValue, key string) []string {
	raw, ok := item[key].(*types.AttributeValueMemberL)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw.Value))
	for _, el := range raw.Value {
		if s, ok := el.(*types.AttributeValueMemberS); ok {
			values = append(values, s.Value)
		}
	}
	return values
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func optStrAttr(item map[string]types.AttributeValue, key string) string {
	s, ok := item[key].(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return s.Value
}

func boolAttr(item map[string]types.AttributeValue, key string) bool {
	b, ok := item[key].(*types.AttributeValueMemberBOOL)
	if !ok {
		return false
	}
	return b.Value
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
