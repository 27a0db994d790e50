package usecase

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	accountdomain "sellerops-backend/internal/account/domain"
	orderdomain "sellerops-backend/internal/order/domain"
	"sellerops-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// In-memory fakes keep the two-email flow stateful: the order created by the
// first email must be findable when the second one is matched.

type fakeOrderRepo struct {
	orders []*orderdomain.SupplierOrder
	nextID int
}

func (f *fakeOrderRepo) Create(order *orderdomain.SupplierOrder) error {
	f.nextID++
	if order.ID == "" {
		order.ID = fmt.Sprintf("order-%d", f.nextID)
	}
	order.CreatedAt = time.Now()
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderRepo) Update(order *orderdomain.SupplierOrder) error {
	for i, o := range f.orders {
		if o.ID == order.ID {
			f.orders[i] = order
			return nil
		}
	}
	return fmt.Errorf("order not found: %s", order.ID)
}

func (f *fakeOrderRepo) GetByID(id string) (*orderdomain.SupplierOrder, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetByEmailID(accountID, emailID string) (*orderdomain.SupplierOrder, error) {
	for _, o := range f.orders {
		if o.AccountID == accountID && o.EmailID == emailID {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetByOrderNumber(accountID, orderNumber string) (*orderdomain.SupplierOrder, error) {
	for _, o := range f.orders {
		if o.AccountID == accountID && o.OrderNumber != nil && *o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetByTrackingNumber(accountID, trackingNumber string) (*orderdomain.SupplierOrder, error) {
	for _, o := range f.orders {
		if o.AccountID == accountID && o.TrackingNumber != nil && *o.TrackingNumber == trackingNumber {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindBySupplierEmailRecent(accountID, supplierEmail string, since time.Time) ([]*orderdomain.SupplierOrder, error) {
	var matches []*orderdomain.SupplierOrder
	for _, o := range f.orders {
		if o.AccountID != accountID || o.SupplierEmail != supplierEmail {
			continue
		}
		if o.Status == orderdomain.StatusDelivered || o.Status == orderdomain.StatusCancelled {
			continue
		}
		if !o.CreatedAt.After(since) {
			continue
		}
		matches = append(matches, o)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return matches, nil
}

func (f *fakeOrderRepo) ListByAccount(accountID string, limit, offset int) ([]*orderdomain.SupplierOrder, int64, error) {
	return f.orders, int64(len(f.orders)), nil
}

func (f *fakeOrderRepo) ListAll(limit, offset int) ([]*orderdomain.SupplierOrder, int64, error) {
	return f.orders, int64(len(f.orders)), nil
}

type fakeRunRepo struct {
	runs []*orderdomain.SyncRun
}

func (f *fakeRunRepo) Create(run *orderdomain.SyncRun) error {
	run.ID = fmt.Sprintf("run-%d", len(f.runs)+1)
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRunRepo) Update(run *orderdomain.SyncRun) error { return nil }

func (f *fakeRunRepo) List(limit, offset int) ([]*orderdomain.SyncRun, int64, error) {
	return f.runs, int64(len(f.runs)), nil
}

func (f *fakeRunRepo) ListByAccount(accountID string, limit, offset int) ([]*orderdomain.SyncRun, int64, error) {
	return f.runs, int64(len(f.runs)), nil
}

type fakeSettingsRepo struct {
	settings *orderdomain.AutoFlagSettings
}

func (f *fakeSettingsRepo) GetOrCreateDefault() (*orderdomain.AutoFlagSettings, error) {
	if f.settings == nil {
		f.settings = orderdomain.DefaultAutoFlagSettings()
	}
	return f.settings, nil
}

func (f *fakeSettingsRepo) Update(settings *orderdomain.AutoFlagSettings) error {
	f.settings = settings
	return nil
}

type fakeAccountRepo struct {
	accounts []*accountdomain.MailAccount
	updates  int
}

func (f *fakeAccountRepo) Create(account *accountdomain.MailAccount) error {
	f.accounts = append(f.accounts, account)
	return nil
}

func (f *fakeAccountRepo) Update(account *accountdomain.MailAccount) error {
	f.updates++
	return nil
}

func (f *fakeAccountRepo) FindByID(id string) (*accountdomain.MailAccount, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByEmail(email string) (*accountdomain.MailAccount, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) ListAll() ([]*accountdomain.MailAccount, error) {
	return f.accounts, nil
}

type fakeProvider struct {
	messages   map[string]*orderdomain.EmailMessage
	listErr    error
	refreshed  *oauth2.Token
	refreshErr error
}

func (f *fakeProvider) ListMessageIDs(ctx context.Context, creds orderdomain.Credential, query string, maxResults int64, onTokenRefresh orderdomain.TokenUpdateFunc) ([]orderdomain.MessageRef, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var refs []orderdomain.MessageRef
	var ids []string
	for id := range f.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		refs = append(refs, orderdomain.MessageRef{ID: id})
	}
	return refs, nil
}

func (f *fakeProvider) GetFullMessage(ctx context.Context, creds orderdomain.Credential, id string, onTokenRefresh orderdomain.TokenUpdateFunc) (*orderdomain.EmailMessage, error) {
	msg, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("message not found: %s", id)
	}
	return msg, nil
}

func (f *fakeProvider) RefreshCredential(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshed, nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxEmailsPerRun: 50,
		QueryWindowDays: 30,
	}
}

func testAccount() *accountdomain.MailAccount {
	return &accountdomain.MailAccount{
		ID:          "acc-1",
		Email:       "seller@example.com",
		Provider:    "google",
		AccessToken: "tok",
		TokenExpiry: time.Now().Add(1 * time.Hour),
		SyncEnabled: true,
	}
}

func newTestSync(orders *fakeOrderRepo, runs *fakeRunRepo, accounts *fakeAccountRepo, provider *fakeProvider) SyncUsecase {
	return NewSyncUsecase(orders, &fakeSettingsRepo{}, runs, accounts, provider, provider, testConfig())
}

func TestSyncAccount_ConfirmationThenShipping(t *testing.T) {
	received := time.Now().Add(-24 * time.Hour)
	provider := &fakeProvider{messages: map[string]*orderdomain.EmailMessage{
		"email-1": {
			ID:         "email-1",
			Subject:    "Order Confirmation - WidgetSupply",
			From:       "WidgetSupply <orders@widgetsupply.com>",
			BodyText:   "Thank you for your order. Order Number: WS-2291 Total: $149.99",
			ReceivedAt: received,
		},
		"email-2": {
			ID:         "email-2",
			Subject:    "Your order WS-2291 has shipped!",
			From:       "WidgetSupply <orders@widgetsupply.com>",
			BodyText:   "Your order WS-2291 has been shipped. Tracking: 1Z999AA10123456784",
			ReceivedAt: received.Add(2 * time.Hour),
		},
	}}

	orders := &fakeOrderRepo{}
	runs := &fakeRunRepo{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{testAccount()}}
	sync := newTestSync(orders, runs, accounts, provider)

	run, err := sync.SyncAccount(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, orderdomain.SyncRunCompleted, run.Status)
	assert.Equal(t, 2, run.EmailsProcessed)
	assert.Equal(t, 1, run.OrdersCreated)
	assert.Equal(t, 1, run.OrdersUpdated)
	assert.Empty(t, run.ErrorMessage)
	require.NotNil(t, run.FinishedAt)

	// Both emails collapsed into a single order carrying the merged facts
	require.Len(t, orders.orders, 1)
	order := orders.orders[0]
	assert.Equal(t, orderdomain.StatusShipped, order.Status)
	require.NotNil(t, order.OrderNumber)
	assert.Equal(t, "WS-2291", *order.OrderNumber)
	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "1Z999AA10123456784", *order.TrackingNumber)
	require.NotNil(t, order.Carrier)
	assert.Equal(t, "UPS", *order.Carrier)
	require.NotNil(t, order.TotalCost)
	assert.Equal(t, 149.99, *order.TotalCost)
	assert.Equal(t, "WidgetSupply", order.SupplierName)
	assert.Equal(t, "orders@widgetsupply.com", order.SupplierEmail)

	// Last-synced stamp was persisted
	account, _ := accounts.FindByID("acc-1")
	assert.NotNil(t, account.LastSyncedAt)
}

func TestSyncAccount_RerunIsIdempotent(t *testing.T) {
	received := time.Now().Add(-24 * time.Hour)
	provider := &fakeProvider{messages: map[string]*orderdomain.EmailMessage{
		"email-1": {
			ID:         "email-1",
			Subject:    "Order Confirmation",
			From:       "orders@widgetsupply.com",
			BodyText:   "Thank you for your order. Order Number: WS-2291",
			ReceivedAt: received,
		},
	}}

	orders := &fakeOrderRepo{}
	runs := &fakeRunRepo{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{testAccount()}}
	sync := newTestSync(orders, runs, accounts, provider)

	first, err := sync.SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.OrdersCreated)

	second, err := sync.SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.EmailsProcessed)
	assert.Equal(t, 0, second.OrdersCreated)
	assert.Equal(t, 0, second.OrdersUpdated)

	assert.Len(t, orders.orders, 1)
}

func TestSyncAccount_NonOrderEmailsSkipped(t *testing.T) {
	provider := &fakeProvider{messages: map[string]*orderdomain.EmailMessage{
		"email-1": {
			ID:         "email-1",
			Subject:    "Our spring collection is here",
			From:       "news@widgetsupply.com",
			BodyText:   "Check out the newest arrivals.",
			ReceivedAt: time.Now(),
		},
	}}

	orders := &fakeOrderRepo{}
	runs := &fakeRunRepo{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{testAccount()}}
	sync := newTestSync(orders, runs, accounts, provider)

	run, err := sync.SyncAccount(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, 1, run.EmailsProcessed)
	assert.Equal(t, 0, run.OrdersCreated)
	assert.Empty(t, orders.orders)
}

func TestSyncAccount_DisabledAccountRecordsZeroActivityRun(t *testing.T) {
	account := testAccount()
	account.SyncEnabled = false

	provider := &fakeProvider{messages: map[string]*orderdomain.EmailMessage{}}
	orders := &fakeOrderRepo{}
	runs := &fakeRunRepo{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{account}}
	sync := newTestSync(orders, runs, accounts, provider)

	run, err := sync.SyncAccount(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, orderdomain.SyncRunCompleted, run.Status)
	assert.Equal(t, 0, run.EmailsProcessed)
	assert.Contains(t, run.ErrorMessage, "sync disabled")
	// The disabled account is never stamped as synced
	assert.Nil(t, account.LastSyncedAt)
}

func TestSyncAccount_UnknownAccount(t *testing.T) {
	provider := &fakeProvider{}
	sync := newTestSync(&fakeOrderRepo{}, &fakeRunRepo{}, &fakeAccountRepo{}, provider)

	run, err := sync.SyncAccount(context.Background(), "missing")

	assert.Error(t, err)
	assert.Nil(t, run)
}

func TestSyncAccount_ListFailureSealsRunAsFailed(t *testing.T) {
	provider := &fakeProvider{listErr: fmt.Errorf("rate limited")}
	orders := &fakeOrderRepo{}
	runs := &fakeRunRepo{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{testAccount()}}
	sync := newTestSync(orders, runs, accounts, provider)

	run, err := sync.SyncAccount(context.Background(), "acc-1")

	assert.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, orderdomain.SyncRunFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "rate limited")
	require.NotNil(t, run.FinishedAt)
}

func TestSyncAccount_RefreshesExpiringToken(t *testing.T) {
	account := testAccount()
	account.RefreshToken = "refresh-tok"
	account.TokenExpiry = time.Now().Add(1 * time.Minute)

	provider := &fakeProvider{
		messages: map[string]*orderdomain.EmailMessage{},
		refreshed: &oauth2.Token{
			AccessToken: "new-tok",
			Expiry:      time.Now().Add(1 * time.Hour),
		},
	}
	orders := &fakeOrderRepo{}
	runs := &fakeRunRepo{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{account}}
	sync := newTestSync(orders, runs, accounts, provider)

	run, err := sync.SyncAccount(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, orderdomain.SyncRunCompleted, run.Status)
	assert.Equal(t, "new-tok", account.AccessToken)
	// Refresh token without a rotation keeps the stored one
	assert.Equal(t, "refresh-tok", account.RefreshToken)
}

func TestSyncAccount_RefreshFailureFailsRun(t *testing.T) {
	account := testAccount()
	account.RefreshToken = "refresh-tok"
	account.TokenExpiry = time.Now().Add(-1 * time.Hour)

	provider := &fakeProvider{refreshErr: fmt.Errorf("invalid_grant")}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{account}}
	sync := newTestSync(&fakeOrderRepo{}, &fakeRunRepo{}, accounts, provider)

	run, err := sync.SyncAccount(context.Background(), "acc-1")

	assert.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, orderdomain.SyncRunFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "invalid_grant")
}

func TestSyncAccount_MissingCredentialFailsRun(t *testing.T) {
	account := testAccount()
	account.AccessToken = ""
	account.RefreshToken = ""

	provider := &fakeProvider{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{account}}
	sync := newTestSync(&fakeOrderRepo{}, &fakeRunRepo{}, accounts, provider)

	run, err := sync.SyncAccount(context.Background(), "acc-1")

	assert.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, orderdomain.SyncRunFailed, run.Status)
}

func TestSyncAllAccounts_ContinuesPastFailures(t *testing.T) {
	good := testAccount()
	bad := testAccount()
	bad.ID = "acc-2"
	bad.Email = "broken@example.com"
	bad.AccessToken = ""
	bad.RefreshToken = ""

	provider := &fakeProvider{messages: map[string]*orderdomain.EmailMessage{}}
	orders := &fakeOrderRepo{}
	runs := &fakeRunRepo{}
	accounts := &fakeAccountRepo{accounts: []*accountdomain.MailAccount{bad, good}}
	sync := newTestSync(orders, runs, accounts, provider)

	err := sync.SyncAllAccounts(context.Background())

	require.NoError(t, err)
	require.Len(t, runs.runs, 2)
	assert.Equal(t, orderdomain.SyncRunFailed, runs.runs[0].Status)
	assert.Equal(t, orderdomain.SyncRunCompleted, runs.runs[1].Status)
}

func TestBuildCandidateQuery(t *testing.T) {
	query := buildCandidateQuery(30)
	assert.Contains(t, query, "newer_than:30d")
	assert.Contains(t, query, "order OR shipped")
}
