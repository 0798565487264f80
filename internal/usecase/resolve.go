package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"welcome-keys/internal/domain"
)

// ContentReader is the content-store surface the resolver needs. Satisfied
// by *repository.Client.
type ContentReader interface {
	GetPinMapping(ctx context.Context, code string) (domain.PinMapping, bool, error)
	GetBooklet(ctx context.Context, bookletID string) (domain.Booklet, bool, error)
	GetWifiCredential(ctx context.Context, bookletID string) (domain.WifiCredential, bool, error)
	ListEquipment(ctx context.Context, bookletID string) ([]domain.EquipmentItem, error)
	ListFaqEntries(ctx context.Context, bookletID string) ([]domain.FaqEntry, error)
	ListNearbyPlaces(ctx context.Context, bookletID string) ([]domain.NearbyPlace, error)
}

// ResolveService turns a raw guest PIN into published booklet content.
// Every lookup path (content, Wi-Fi, chat) goes through the same
// normalization and two-stage lookup so a code behaves identically wherever
// the guest types it.
type ResolveService struct {
	store ContentReader
}

func NewResolveService(store ContentReader) (*ResolveService, error) {
	if store == nil {
		return nil, errors.New("usecase: content store must not be nil")
	}
	return &ResolveService{store: store}, nil
}

// NormalizePin strips all whitespace (including interior runs) and
// uppercases, so "ab12 cd" and " AB12CD " resolve identically.
func NormalizePin(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// resolvePublishedBooklet runs the shared two-stage lookup: active mapping,
// then published booklet. A disabled mapping, a missing booklet and a
// draft/archived booklet are all guest-indistinguishable 404s; the internal
// codes stay distinct for operators.
func (s *ResolveService) resolvePublishedBooklet(ctx context.Context, rawCode string) (domain.Booklet, error) {
	code := NormalizePin(rawCode)
	if code == "" {
		return domain.Booklet{}, newError(ErrorInvalidInput, "empty_pin", nil)
	}

	mapping, found, err := s.store.GetPinMapping(ctx, code)
	if err != nil {
		return domain.Booklet{}, newError(ErrorLookupFailed, "pin_lookup_error", err)
	}
	if !found || mapping.Status != domain.PinStatusActive {
		return domain.Booklet{}, newError(ErrorNotFound, "pin_not_active", nil)
	}

	booklet, found, err := s.store.GetBooklet(ctx, mapping.BookletID)
	if err != nil {
		return domain.Booklet{}, newError(ErrorLookupFailed, "booklet_lookup_error", err)
	}
	if !found || booklet.Status != domain.BookletStatusPublished {
		return domain.Booklet{}, newError(ErrorNotPublished, "booklet_not_published", nil)
	}
	return booklet, nil
}

// ResolveByPin returns the full guest content bundle for an active code and
// a published booklet. The Wi-Fi password is deliberately absent; only the
// SSID rides along for display and chat context.
func (s *ResolveService) ResolveByPin(ctx context.Context, rawCode string) (domain.ContentBundle, error) {
	booklet, err := s.resolvePublishedBooklet(ctx, rawCode)
	if err != nil {
		return domain.ContentBundle{}, err
	}

	bundle := domain.ContentBundle{Booklet: booklet}

	cred, found, err := s.store.GetWifiCredential(ctx, booklet.ID)
	if err != nil {
		return domain.ContentBundle{}, newError(ErrorLookupFailed, "wifi_lookup_error", err)
	}
	if found {
		bundle.WifiSSID = cred.SSID
	}

	if bundle.Equipment, err = s.store.ListEquipment(ctx, booklet.ID); err != nil {
		return domain.ContentBundle{}, newError(ErrorLookupFailed, "equipment_lookup_error", err)
	}
	if bundle.Faq, err = s.store.ListFaqEntries(ctx, booklet.ID); err != nil {
		return domain.ContentBundle{}, newError(ErrorLookupFailed, "faq_lookup_error", err)
	}
	if bundle.Nearby, err = s.store.ListNearbyPlaces(ctx, booklet.ID); err != nil {
		return domain.ContentBundle{}, newError(ErrorLookupFailed, "places_lookup_error", err)
	}
	return bundle, nil
}

// ResolveWifiByPin is the least-exposure sibling of ResolveByPin: same
// normalization and two-stage lookup, but the result is exactly the SSID and
// password, nothing else. A published booklet without a configured network
// fails NO_CREDENTIALS so callers can render "no Wi-Fi" instead of a generic
// error.
func (s *ResolveService) ResolveWifiByPin(ctx context.Context, rawCode string) (domain.WifiCredential, error) {
	booklet, err := s.resolvePublishedBooklet(ctx, rawCode)
	if err != nil {
		return domain.WifiCredential{}, err
	}

	cred, found, err := s.store.GetWifiCredential(ctx, booklet.ID)
	if err != nil {
		return domain.WifiCredential{}, newError(ErrorLookupFailed, "wifi_lookup_error", err)
	}
	if !found || strings.TrimSpace(cred.SSID) == "" {
		return domain.WifiCredential{}, newError(ErrorNoCredentials, "wifi_not_configured", nil)
	}
	return domain.WifiCredential{BookletID: booklet.ID, SSID: cred.SSID, Password: cred.Password}, nil
}
