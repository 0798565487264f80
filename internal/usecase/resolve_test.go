package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"welcome-keys/internal/domain"
)

type mockStore struct {
	mappings  map[string]domain.PinMapping
	booklets  map[string]domain.Booklet
	wifi      map[string]domain.WifiCredential
	equipment map[string][]domain.EquipmentItem
	faq       map[string][]domain.FaqEntry
	nearby    map[string][]domain.NearbyPlace

	pinErr     error
	bookletErr error
	wifiErr    error
}

func (m *mockStore) GetPinMapping(_ context.Context, code string) (domain.PinMapping, bool, error) {
	if m.pinErr != nil {
		return domain.PinMapping{}, false, m.pinErr
	}
	mapping, ok := m.mappings[code]
	return mapping, ok, nil
}

func (m *mockStore) GetBooklet(_ context.Context, bookletID string) (domain.Booklet, bool, error) {
	if m.bookletErr != nil {
		return domain.Booklet{}, false, m.bookletErr
	}
	b, ok := m.booklets[bookletID]
	return b, ok, nil
}

func (m *mockStore) GetWifiCredential(_ context.Context, bookletID string) (domain.WifiCredential, bool, error) {
	if m.wifiErr != nil {
		return domain.WifiCredential{}, false, m.wifiErr
	}
	cred, ok := m.wifi[bookletID]
	return cred, ok, nil
}

func (m *mockStore) ListEquipment(_ context.Context, bookletID string) ([]domain.EquipmentItem, error) {
	return m.equipment[bookletID], nil
}

func (m *mockStore) ListFaqEntries(_ context.Context, bookletID string) ([]domain.FaqEntry, error) {
	return m.faq[bookletID], nil
}

func (m *mockStore) ListNearbyPlaces(_ context.Context, bookletID string) ([]domain.NearbyPlace, error) {
	return m.nearby[bookletID], nil
}

func publishedStore() *mockStore {
	return &mockStore{
		mappings: map[string]domain.PinMapping{
			"AB12CD": {Code: "AB12CD", BookletID: "bk-1", Status: domain.PinStatusActive},
		},
		booklets: map[string]domain.Booklet{
			"bk-1": {
				ID:             "bk-1",
				PropertyName:   "Maison du Port",
				Status:         domain.BookletStatusPublished,
				ChatbotEnabled: true,
			},
		},
		wifi: map[string]domain.WifiCredential{
			"bk-1": {BookletID: "bk-1", SSID: "MaisonWifi", Password: "s3cret!"},
		},
		faq: map[string][]domain.FaqEntry{
			"bk-1": {
				{BookletID: "bk-1", Question: "Q1", Answer: "A1", OrderIndex: 1},
				{BookletID: "bk-1", Question: "Q2", Answer: "A2", OrderIndex: 2},
			},
		},
	}
}

func newResolver(t *testing.T, store ContentReader) *ResolveService {
	t.Helper()
	svc, err := NewResolveService(store)
	require.NoError(t, err)
	return svc
}

func expectResolveError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, code, ucErr.Code)
	require.Equal(t, reason, ucErr.Reason)
}

func TestNewResolveService_NilStore(t *testing.T) {
	_, err := NewResolveService(nil)
	require.Error(t, err)
}

func TestNormalizePin(t *testing.T) {
	require.Equal(t, "AB12CD", NormalizePin("ab12cd"))
	require.Equal(t, "AB12CD", NormalizePin(" AB12CD "))
	require.Equal(t, "AB12CD", NormalizePin("ab12 cd"))
	require.Equal(t, "AB12CD", NormalizePin("\tAb 1\n2 cD "))
	require.Equal(t, "", NormalizePin("   "))
}

func TestResolveByPin_HappyPath(t *testing.T) {
	svc := newResolver(t, publishedStore())

	bundle, err := svc.ResolveByPin(context.Background(), "AB12CD")
	require.NoError(t, err)
	require.Equal(t, "Maison du Port", bundle.Booklet.PropertyName)
	require.Equal(t, "MaisonWifi", bundle.WifiSSID)
	require.Len(t, bundle.Faq, 2)
}

func TestResolveByPin_NormalizationInvariance(t *testing.T) {
	svc := newResolver(t, publishedStore())

	for _, raw := range []string{"AB12CD", "ab12cd", " AB12CD ", "ab12 cd", " aB1 2cD\t"} {
		bundle, err := svc.ResolveByPin(context.Background(), raw)
		require.NoError(t, err, "raw code %q", raw)
		require.Equal(t, "bk-1", bundle.Booklet.ID, "raw code %q", raw)
	}
}

func TestResolveByPin_EmptyCode(t *testing.T) {
	svc := newResolver(t, publishedStore())
	_, err := svc.ResolveByPin(context.Background(), "   ")
	expectResolveError(t, err, ErrorInvalidInput, "empty_pin")
}

func TestResolveByPin_UnknownCode(t *testing.T) {
	svc := newResolver(t, publishedStore())
	_, err := svc.ResolveByPin(context.Background(), "ZZ00ZZ")
	expectResolveError(t, err, ErrorNotFound, "pin_not_active")
}

func TestResolveByPin_DisabledMapping(t *testing.T) {
	store := publishedStore()
	store.mappings["AB12CD"] = domain.PinMapping{Code: "AB12CD", BookletID: "bk-1", Status: domain.PinStatusDisabled}
	svc := newResolver(t, store)

	_, err := svc.ResolveByPin(context.Background(), "AB12CD")
	expectResolveError(t, err, ErrorNotFound, "pin_not_active")
}

func TestResolveByPin_DraftAndArchivedFail(t *testing.T) {
	for _, status := range []string{domain.BookletStatusDraft, domain.BookletStatusArchived} {
		store := publishedStore()
		b := store.booklets["bk-1"]
		b.Status = status
		store.booklets["bk-1"] = b
		svc := newResolver(t, store)

		_, err := svc.ResolveByPin(context.Background(), "AB12CD")
		expectResolveError(t, err, ErrorNotPublished, "booklet_not_published")
	}
}

func TestResolveByPin_MappingToMissingBooklet(t *testing.T) {
	store := publishedStore()
	delete(store.booklets, "bk-1")
	svc := newResolver(t, store)

	_, err := svc.ResolveByPin(context.Background(), "AB12CD")
	expectResolveError(t, err, ErrorNotPublished, "booklet_not_published")
}

func TestResolveByPin_StoreErrors(t *testing.T) {
	store := publishedStore()
	store.pinErr = errors.New("dynamodb down")
	svc := newResolver(t, store)
	_, err := svc.ResolveByPin(context.Background(), "AB12CD")
	expectResolveError(t, err, ErrorLookupFailed, "pin_lookup_error")

	store = publishedStore()
	store.bookletErr = errors.New("dynamodb down")
	svc = newResolver(t, store)
	_, err = svc.ResolveByPin(context.Background(), "AB12CD")
	expectResolveError(t, err, ErrorLookupFailed, "booklet_lookup_error")
}

func TestResolveByPin_MissingWifiLeavesSSIDEmpty(t *testing.T) {
	store := publishedStore()
	delete(store.wifi, "bk-1")
	svc := newResolver(t, store)

	bundle, err := svc.ResolveByPin(context.Background(), "AB12CD")
	require.NoError(t, err)
	require.Empty(t, bundle.WifiSSID)
}

func TestResolveWifiByPin_HappyPath(t *testing.T) {
	svc := newResolver(t, publishedStore())

	cred, err := svc.ResolveWifiByPin(context.Background(), " ab12 cd ")
	require.NoError(t, err)
	require.Equal(t, "MaisonWifi", cred.SSID)
	require.Equal(t, "s3cret!", cred.Password)
}

func TestResolveWifiByPin_NoCredentials(t *testing.T) {
	store := publishedStore()
	delete(store.wifi, "bk-1")
	svc := newResolver(t, store)

	_, err := svc.ResolveWifiByPin(context.Background(), "AB12CD")
	expectResolveError(t, err, ErrorNoCredentials, "wifi_not_configured")
}

func TestResolveWifiByPin_BlankSSIDCountsAsNoCredentials(t *testing.T) {
	store := publishedStore()
	store.wifi["bk-1"] = domain.WifiCredential{BookletID: "bk-1", SSID: "  "}
	svc := newResolver(t, store)

	_, err := svc.ResolveWifiByPin(context.Background(), "AB12CD")
	expectResolveError(t, err, ErrorNoCredentials, "wifi_not_configured")
}

func TestResolveWifiByPin_SharesResolutionSemantics(t *testing.T) {
	svc := newResolver(t, publishedStore())
	_, err := svc.ResolveWifiByPin(context.Background(), "ZZ00ZZ")
	expectResolveError(t, err, ErrorNotFound, "pin_not_active")

	store := publishedStore()
	b := store.booklets["bk-1"]
	b.Status = domain.BookletStatusDraft
	store.booklets["bk-1"] = b
	svc = newResolver(t, store)
	_, err = svc.ResolveWifiByPin(context.Background(), "AB12CD")
	expectResolveError(t, err, ErrorNotPublished, "booklet_not_published")
}
