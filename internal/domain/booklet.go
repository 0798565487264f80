package domain

// Booklet lifecycle states. Only published booklets are resolvable by guests.
const (
	BookletStatusDraft     = "draft"
	BookletStatusPublished = "published"
	BookletStatusArchived  = "archived"
)

// PIN mapping states. At most one active mapping exists per code; regenerating
// a PIN disables the old row instead of deleting it.
const (
	PinStatusActive   = "active"
	PinStatusDisabled = "disabled"
)

// PinMapping ties a normalized guest code to a booklet.
type PinMapping struct {
	Code      string
	BookletID string
	Status    string
}

// ChatbotConfig is the concierge-tunable part of the guest chatbot.
type ChatbotConfig struct {
	WelcomeMessage string
	Suggestions    []string
}

// Booklet is the guest-visible projection of a welcome booklet. Owner-only
// fields (account, billing, internal notes) never appear here.
type Booklet struct {
	ID                string
	PropertyName      string
	Tagline           string
	PropertyAddress   string
	PropertyType      string
	WelcomeMessage    string
	CoverImageURL     string
	CheckInTime       string
	CheckOutTime      string
	CheckInProcedure  string
	CheckOutProcedure string
	AccessCode        string
	ParkingInfo       string
	HouseRules        string
	SafetyInfo        string
	EmergencyContacts []string
	Amenities         []string
	WasteInstructions string
	CleaningNotes     string
	Gallery           []string
	LegalNotice       string
	ChatbotEnabled    bool
	ChatbotConfig     ChatbotConfig
	Status            string
}

// WifiCredential is returned only through the dedicated Wi-Fi resolution
// path. The password must never ride along in a content bundle or a chat
// context.
type WifiCredential struct {
	BookletID string
	SSID      string
	Password  string
}

// EquipmentStep is one ordered instruction for operating a piece of equipment.
type EquipmentStep struct {
	ID   string
	Text string
}

// EquipmentItem describes an appliance with usage steps.
type EquipmentItem struct {
	ID        string
	BookletID string
	Name      string
	Category  string
	Steps     []EquipmentStep
	ManualURL string
}

// FaqEntry is a concierge-authored question/answer pair.
type FaqEntry struct {
	BookletID  string
	Question   string
	Answer     string
	OrderIndex int
}

// NearbyPlace is a recommended spot around the property.
type NearbyPlace struct {
	ID        string
	BookletID string
	Name      string
	Category  string
	Distance  string
	MapsURL   string
}

// ContentBundle is everything a guest holding a valid PIN may see in one
// read: the published booklet plus its satellite content. WifiSSID carries
// the network name only; the password stays on the Wi-Fi path.
type ContentBundle struct {
	Booklet   Booklet
	WifiSSID  string
	Equipment []EquipmentItem
	Faq       []FaqEntry
	Nearby    []NearbyPlace
}
