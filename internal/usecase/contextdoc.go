package usecase

import (
	"fmt"
	"strings"

	"welcome-keys/internal/domain"
)

// missingValue marks fields the concierge left empty; empty fields are
// rendered explicitly, never omitted.
const missingValue = "Non renseigné"

const wifiRedirectInstruction = "Le mot de passe Wi-Fi n'est jamais inclus ici. " +
	"Si le voyageur demande le mot de passe Wi-Fi, invitez-le à utiliser le bouton " +
	"\"Voir le Wi-Fi\" du livret, qui l'affiche de manière sécurisée."

// AssembleContext flattens a content bundle into the bounded natural-language
// document fed to the completion endpoint. Section order is fixed: identity,
// practical info, Wi-Fi (SSID only), waste/cleaning, equipment, nearby
// places, FAQ, legal. Booklet content is small, so one string is fine.
func AssembleContext(bundle domain.ContentBundle) string {
	b := bundle.Booklet
	var sections []string

	sections = append(sections, section("Identité du logement",
		line("Nom", b.PropertyName),
		line("Slogan", b.Tagline),
		line("Message de bienvenue", b.WelcomeMessage),
	))

	sections = append(sections, section("Informations pratiques",
		line("Adresse", b.PropertyAddress),
		line("Type de logement", b.PropertyType),
		line("Heure d'arrivée", b.CheckInTime),
		line("Heure de départ", b.CheckOutTime),
		line("Procédure d'arrivée", b.CheckInProcedure),
		line("Procédure de départ", b.CheckOutProcedure),
		line("Code d'accès", b.AccessCode),
		line("Stationnement", b.ParkingInfo),
		line("Règlement intérieur", b.HouseRules),
		line("Consignes de sécurité", b.SafetyInfo),
		line("Contacts d'urgence", strings.Join(b.EmergencyContacts, " ; ")),
	))

	sections = append(sections, section("Wi-Fi",
		line("Nom du réseau (SSID)", bundle.WifiSSID),
		wifiRedirectInstruction,
	))

	sections = append(sections, section("Déchets et ménage",
		line("Tri et collecte des déchets", b.WasteInstructions),
		line("Consignes de ménage", b.CleaningNotes),
	))

	sections = append(sections, equipmentSection(bundle.Equipment))
	sections = append(sections, nearbySection(bundle.Nearby))
	sections = append(sections, faqSection(bundle.Faq))

	sections = append(sections, section("Mentions légales",
		line("Informations légales et licence", b.LegalNotice),
	))

	return strings.Join(sections, "\n\n")
}

func section(title string, lines ...string) string {
	return "## " + title + "\n" + strings.Join(lines, "\n")
}

func line(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = missingValue
	}
	return label + " : " + value
}

func equipmentSection(items []domain.EquipmentItem) string {
	if len(items) == 0 {
		return section("Équipements", missingValue)
	}
	lines := make([]string, 0, len(items))
	for _, eq := range items {
		steps := make([]string, 0, len(eq.Steps))
		for i, step := range eq.Steps {
			steps = append(steps, fmt.Sprintf("%d. %s", i+1, step.Text))
		}
		instructions := strings.Join(steps, " ")
		if instructions == "" {
			instructions = missingValue
		}
		lines = append(lines, fmt.Sprintf("- %s (%s) : %s", eq.Name, orMissing(eq.Category), instructions))
	}
	return section("Équipements", lines...)
}

func nearbySection(places []domain.NearbyPlace) string {
	if len(places) == 0 {
		return section("À proximité", missingValue)
	}
	lines := make([]string, 0, len(places))
	for _, p := range places {
		lines = append(lines, fmt.Sprintf("- %s (%s), distance : %s, plan : %s",
			p.Name, orMissing(p.Category), orMissing(p.Distance), orMissing(p.MapsURL)))
	}
	return section("À proximité", lines...)
}

func faqSection(entries []domain.FaqEntry) string {
	if len(entries) == 0 {
		return section("Questions fréquentes", missingValue)
	}
	lines := make([]string, 0, len(entries)*2)
	for _, entry := range entries {
		lines = append(lines, "Q : "+entry.Question, "R : "+entry.Answer)
	}
	return section("Questions fréquentes", lines...)
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingValue
	}
	return s
}
