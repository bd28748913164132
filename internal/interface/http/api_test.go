package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"example.com/glowshop/internal/cartstore"
	domcheckout "example.com/glowshop/internal/domain/checkout"
	domorder "example.com/glowshop/internal/domain/order"
	domproduct "example.com/glowshop/internal/domain/product"
	domuser "example.com/glowshop/internal/domain/user"
	authuc "example.com/glowshop/internal/usecase/auth"
	cartuc "example.com/glowshop/internal/usecase/cart"
	checkoutuc "example.com/glowshop/internal/usecase/checkout"
)

type fakeResolver struct {
	products map[string]*domproduct.Product
}

func (f *fakeResolver) GetActiveByIDs(ctx context.Context, ids []string) ([]*domproduct.Product, error) {
	var out []*domproduct.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	created  int
	sessions map[string]*checkoutuc.SessionDetails
	err      error
}

func (f *fakeGateway) CreateSession(ctx context.Context, in checkoutuc.CreateSessionInput) (*domcheckout.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created++
	id := fmt.Sprintf("cs_%d", f.created)
	return &domcheckout.Session{ID: id, URL: "https://pay.example.com/" + id}, nil
}

func (f *fakeGateway) GetSession(ctx context.Context, id string) (*checkoutuc.SessionDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.sessions[id]; ok {
		return d, nil
	}
	return nil, errors.New("no such session")
}

type fakeReceipts struct {
	mu       sync.Mutex
	receipts map[string]*domorder.Receipt
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{receipts: make(map[string]*domorder.Receipt)}
}

func (f *fakeReceipts) RecordOnce(ctx context.Context, r *domorder.Receipt) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.receipts[r.SessionID]; ok {
		return false, nil
	}
	f.receipts[r.SessionID] = r
	return true, nil
}

func (f *fakeReceipts) GetBySessionID(ctx context.Context, sessionID string) (*domorder.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.receipts[sessionID]; ok {
		return r, nil
	}
	return nil, domorder.ErrReceiptNotFound
}

func (f *fakeReceipts) List(ctx context.Context) ([]*domorder.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domorder.Receipt, 0, len(f.receipts))
	for _, r := range f.receipts {
		out = append(out, r)
	}
	return out, nil
}

type fakeMailer struct{}

func (fakeMailer) SendConfirmation(ctx context.Context, to string, receipt *domorder.Receipt) error {
	return nil
}

type fakeMailQueue struct {
	mu       sync.Mutex
	enqueued []string
	full     bool
}

func (f *fakeMailQueue) Enqueue(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.enqueued = append(f.enqueued, sessionID)
	return true
}

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domuser.User
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domuser.User), nextID: 100}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, domuser.ErrEmailAlreadyUsed
	}
	f.nextID++
	u.ID = f.nextID
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domuser.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domuser.ErrUserNotFound
}

type fakePasswords struct{}

func (fakePasswords) Hash(password string) (string, error) {
	return "hash:" + password, nil
}

func (fakePasswords) Compare(hash string, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(u *domuser.User) (string, error) {
	return "token-for-" + u.Email, nil
}

func (fakeTokens) ParseToken(token string) (*authuc.Claims, error) {
	switch token {
	case "customer-token":
		return &authuc.Claims{UserID: 7, RoleCode: domuser.RoleCodeCustomer, Email: "amira@example.com", Name: "Amira"}, nil
	case "admin-token":
		return &authuc.Claims{UserID: 1, RoleCode: domuser.RoleCodeAdmin, Email: "admin@example.com", Name: "Admin"}, nil
	}
	return nil, errors.New("bad token")
}

type testEnv struct {
	api      *API
	router   http.Handler
	store    *cartstore.MemoryStore
	users    *fakeUserRepo
	gateway  *fakeGateway
	receipts *fakeReceipts
	queue    *fakeMailQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := cartstore.NewMemoryStore()
	cartSvc := cartuc.NewService(store)

	users := newFakeUserRepo()
	users.byEmail["amira@example.com"] = &domuser.User{
		ID:           7,
		Name:         "Amira",
		Email:        "amira@example.com",
		PasswordHash: "hash:velvet-rosewater",
		RoleCode:     domuser.RoleCodeCustomer,
	}
	authSvc := authuc.NewService(users, fakePasswords{}, fakeTokens{})

	resolver := &fakeResolver{products: map[string]*domproduct.Product{
		"p1": {ID: "p1", Name: "Rose Facial Oil", Slug: "rose-facial-oil", PriceCents: 3500, Currency: "usd", IsActive: true},
		"p2": {ID: "p2", Name: "Lavender Body Scrub", Slug: "lavender-body-scrub", PriceCents: 2200, Currency: "usd", IsActive: true},
	}}
	gateway := &fakeGateway{sessions: map[string]*checkoutuc.SessionDetails{}}
	receipts := newFakeReceipts()

	checkoutSvc := checkoutuc.NewService(
		resolver, gateway, store, receipts, cartSvc, fakeMailer{}, zap.NewNop())

	queue := &fakeMailQueue{}

	api := NewAPI(Dependencies{
		AuthService:     authSvc,
		CartService:     cartSvc,
		CheckoutService: checkoutSvc,
		MailQueue:       queue,
		Receipts:        receipts,
		TokenService:    fakeTokens{},
		Logger:          zap.NewNop(),
	})

	return &testEnv{
		api:      api,
		router:   api.Router(),
		store:    store,
		users:    users,
		gateway:  gateway,
		receipts: receipts,
		queue:    queue,
	}
}

type reqOption func(*http.Request)

func withCartToken(token string) reqOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: cartTokenCookie, Value: token})
	}
}

func withBearer(token string) reqOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOption) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
