package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	checkoutuc "example.com/glowshop/internal/usecase/checkout"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		BaseURL:    serverURL,
		APIKey:     "sk_test_123",
		SuccessURL: "https://shop.example/checkout?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://shop.example/checkout?cancel=true",
	})
}

func TestCreateSession_SendsFormAndHeaders(t *testing.T) {
	var gotForm map[string]string
	var gotAuth, gotIdem string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")

		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":  "cs_live_1",
			"url": "https://pay.example/cs_live_1",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	userID := int64(42)

	session, err := client.CreateSession(context.Background(), checkoutuc.CreateSessionInput{
		Email:  "mai@example.com",
		UserID: &userID,
		Items: []checkoutuc.LineItem{
			{Name: "Rose Facial Oil", PriceCents: 3500, Currency: "usd", Quantity: 2},
		},
		IdempotencyKey: "idem-key-1",
	})

	require.NoError(t, err)
	require.Equal(t, "cs_live_1", session.ID)
	require.Equal(t, "https://pay.example/cs_live_1", session.URL)

	require.Equal(t, "Bearer sk_test_123", gotAuth)
	require.Equal(t, "idem-key-1", gotIdem)
	require.Equal(t, "payment", gotForm["mode"])
	require.Equal(t, "mai@example.com", gotForm["customer_email"])
	require.Equal(t, "42", gotForm["client_reference_id"])
	require.Equal(t, "Rose Facial Oil", gotForm["line_items[0][name]"])
	require.Equal(t, "3500", gotForm["line_items[0][amount]"])
	require.Equal(t, "usd", gotForm["line_items[0][currency]"])
	require.Equal(t, "2", gotForm["line_items[0][quantity]"])
	require.Contains(t, gotForm["success_url"], "{CHECKOUT_SESSION_ID}")
}

func TestGetSession_DecodesDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_live_1", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"id":                  "cs_live_1",
			"status":              "complete",
			"customer_email":      "guest@example.com",
			"client_reference_id": "42",
			"amount_total":        9200,
			"currency":            "usd",
			"line_items": []map[string]any{
				{"name": "Rose Facial Oil", "amount": 3500, "currency": "usd", "quantity": 2},
				{"name": "Lavender Body Scrub", "amount": 2200, "currency": "usd", "quantity": 1},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	details, err := client.GetSession(context.Background(), "cs_live_1")

	require.NoError(t, err)
	require.Equal(t, "complete", details.Status)
	require.Equal(t, "guest@example.com", details.Email)
	require.NotNil(t, details.UserID)
	require.Equal(t, int64(42), *details.UserID)
	require.Equal(t, int64(9200), details.TotalCents)
	require.Len(t, details.Lines, 2)
	require.Equal(t, int64(3500), details.Lines[0].PriceCents)
	require.Equal(t, int64(2), details.Lines[0].Quantity)
}

func TestProviderError_SurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "card declined"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetSession(context.Background(), "cs_x")

	require.ErrorContains(t, err, "card declined")
	require.ErrorContains(t, err, "402")
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	for i := 0; i < 5; i++ {
		_, err := client.GetSession(context.Background(), "cs_x")
		require.ErrorContains(t, err, "provider error")
	}

	// Sixth call fails fast without reaching the provider.
	_, err := client.GetSession(context.Background(), "cs_x")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}
