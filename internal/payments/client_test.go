package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"platewise/internal/credits"
	"platewise/internal/database"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testAPIKey = "keyid123:736563726574" // secret = hex("secret")

func verifyBearer(t *testing.T, r *http.Request) {
	t.Helper()

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		t.Errorf("Expected Bearer authorization, got %q", auth)
		return
	}

	token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil {
		t.Errorf("Token did not verify: %v", err)
		return
	}
	if kid, _ := token.Header["kid"].(string); kid != "keyid123" {
		t.Errorf("Expected kid 'keyid123', got %q", kid)
	}
}

func TestCreateCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkouts" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		verifyBearer(t, r)

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		if payload["pack_id"] != "starter" {
			t.Errorf("Expected pack_id 'starter', got %v", payload["pack_id"])
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Checkout{
			ID:     "chk_1",
			URL:    "https://pay.example.com/chk_1",
			UserID: payload["user_id"].(string),
			PackID: "starter",
			Status: "pending",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey)
	checkout, err := client.CreateCheckout(context.Background(), "user-1", *PackByID("starter"))
	if err != nil {
		t.Fatalf("CreateCheckout failed: %v", err)
	}
	if checkout.ID != "chk_1" || checkout.Status != "pending" {
		t.Errorf("Unexpected checkout: %+v", checkout)
	}
}

func TestGetCheckoutGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey)
	if _, err := client.GetCheckout(context.Background(), "chk_1"); err == nil {
		t.Fatal("Expected an error for gateway failure, got nil")
	}
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	status := "paid"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifyBearer(t, r)
		json.NewEncoder(w).Encode(Checkout{
			ID:     "chk_9",
			UserID: "user-1",
			PackID: "regular",
			Status: status,
		})
	}))
	defer server.Close()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	creditStore := credits.NewStore(db.SQL)
	svc := NewService(NewClient(server.URL, testAPIKey), creditStore, zap.NewNop())

	checkout, err := svc.Redeem(ctx, "chk_9")
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if checkout.Status != "paid" {
		t.Errorf("Expected status 'paid', got %q", checkout.Status)
	}

	balance, err := creditStore.Balance(ctx, "user-1")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 60 {
		t.Errorf("Expected 60 credits after redeeming 'regular', got %d", balance)
	}

	// Redeeming the same checkout again must not double-grant.
	if _, err := svc.Redeem(ctx, "chk_9"); err != nil {
		t.Fatalf("Second redeem failed: %v", err)
	}
	balance, _ = creditStore.Balance(ctx, "user-1")
	if balance != 60 {
		t.Errorf("Expected balance unchanged at 60, got %d", balance)
	}

	// An unpaid checkout grants nothing.
	status = "pending"
	if _, err := svc.Redeem(ctx, "chk_9"); err == nil {
		t.Fatal("Expected an error for unpaid checkout, got nil")
	}
}
