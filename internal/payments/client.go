// Package payments talks to the external payment gateway that sells credit
// packs. The gateway's API authenticates with short-lived JWTs derived from
// an "id:secret" admin key.
package payments

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Pack is a purchasable credit bundle.
type Pack struct {
	ID         string
	Credits    int
	PriceCents int
}

// Packs are the bundles offered for sale.
var Packs = []Pack{
	{ID: "starter", Credits: 20, PriceCents: 299},
	{ID: "regular", Credits: 60, PriceCents: 699},
	{ID: "family", Credits: 150, PriceCents: 1499},
}

// PackByID returns the pack with the given ID, or nil.
func PackByID(id string) *Pack {
	for i := range Packs {
		if Packs[i].ID == id {
			return &Packs[i]
		}
	}
	return nil
}

// Checkout is the gateway's view of a purchase.
type Checkout struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	UserID string `json:"user_id"`
	PackID string `json:"pack_id"`
	Status string `json:"status"` // "pending" or "paid"
}

// Client is an interface for the payment gateway API.
type Client interface {
	CreateCheckout(ctx context.Context, userID string, pack Pack) (*Checkout, error)
	GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error)
}

type gatewayClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a payment gateway client. The API key has the form
// "id:secret" with a hex-encoded secret.
func NewClient(baseURL, apiKey string) Client {
	return &gatewayClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// CreateCheckout starts a purchase for the given pack and returns the hosted
// checkout the user should be sent to.
func (c *gatewayClient) CreateCheckout(ctx context.Context, userID string, pack Pack) (*Checkout, error) {
	payload := map[string]interface{}{
		"user_id":     userID,
		"pack_id":     pack.ID,
		"amount":      pack.PriceCents,
		"description": fmt.Sprintf("%d credits", pack.Credits),
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}

	var checkout Checkout
	if err := json.NewDecoder(resp.Body).Decode(&checkout); err != nil {
		return nil, fmt.Errorf("failed to decode checkout: %w", err)
	}
	return &checkout, nil
}

// GetCheckout fetches the current state of a checkout.
func (c *gatewayClient) GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/checkouts/"+checkoutID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}

	var checkout Checkout
	if err := json.NewDecoder(resp.Body).Decode(&checkout); err != nil {
		return nil, fmt.Errorf("failed to decode checkout: %w", err)
	}
	return &checkout, nil
}

// authorize attaches a short-lived admin token to the request.
func (c *gatewayClient) authorize(req *http.Request) error {
	token, err := c.createToken()
	if err != nil {
		return fmt.Errorf("failed to create gateway token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// createToken generates a short-lived JWT from the "id:secret" API key.
func (c *gatewayClient) createToken() (string, error) {
	keyParts := strings.Split(c.apiKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid api key format: expected id:secret")
	}

	id := keyParts[0]
	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"aud": "/v1/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
