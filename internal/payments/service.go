package payments

import (
	"context"
	"fmt"

	"platewise/internal/credits"

	"go.uber.org/zap"
)

// Service ties the payment gateway to the credit store.
type Service struct {
	client  Client
	credits *credits.Store
	logger  *zap.Logger
}

// NewService creates a payments service.
func NewService(client Client, creditStore *credits.Store, logger *zap.Logger) *Service {
	return &Service{client: client, credits: creditStore, logger: logger.Named("payments")}
}

// StartPurchase creates a checkout for the pack and returns it. No credits
// move until the payment is verified.
func (s *Service) StartPurchase(ctx context.Context, userID, packID string) (*Checkout, error) {
	pack := PackByID(packID)
	if pack == nil {
		return nil, fmt.Errorf("unknown credit pack %q", packID)
	}

	checkout, err := s.client.CreateCheckout(ctx, userID, *pack)
	if err != nil {
		return nil, fmt.Errorf("failed to start purchase: %w", err)
	}

	s.logger.Info("checkout created",
		zap.String("user_id", userID),
		zap.String("pack_id", packID),
		zap.String("checkout_id", checkout.ID))
	return checkout, nil
}

// Redeem verifies a checkout with the gateway and, if paid, grants the
// pack's credits. Redeeming the same checkout twice is a no-op.
func (s *Service) Redeem(ctx context.Context, checkoutID string) (*Checkout, error) {
	checkout, err := s.client.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	if checkout.Status != "paid" {
		return checkout, fmt.Errorf("checkout %s is not paid (status %q)", checkoutID, checkout.Status)
	}

	pack := PackByID(checkout.PackID)
	if pack == nil {
		return nil, fmt.Errorf("checkout %s references unknown pack %q", checkoutID, checkout.PackID)
	}

	if err := s.credits.GrantOnce(ctx, checkout.UserID, pack.Credits, "purchase:"+checkout.ID); err != nil {
		return nil, fmt.Errorf("failed to grant purchased credits: %w", err)
	}

	s.logger.Info("purchase redeemed",
		zap.String("user_id", checkout.UserID),
		zap.String("checkout_id", checkout.ID),
		zap.Int("credits", pack.Credits))
	return checkout, nil
}
