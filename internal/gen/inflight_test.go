package gen

import (
	"errors"
	"testing"
)

func TestInflightGuard(t *testing.T) {
	t.Run("SecondAcquireRejected", func(t *testing.T) {
		guard := NewInflightGuard()

		release, err := guard.Acquire("meal_plan", "user-1")
		if err != nil {
			t.Fatalf("First Acquire failed: %v", err)
		}

		if _, err := guard.Acquire("meal_plan", "user-1"); !errors.Is(err, ErrInFlight) {
			t.Fatalf("Expected ErrInFlight, got %v", err)
		}

		release()
		release2, err := guard.Acquire("meal_plan", "user-1")
		if err != nil {
			t.Fatalf("Acquire after release failed: %v", err)
		}
		release2()
	})

	t.Run("SlotsAreIndependent", func(t *testing.T) {
		guard := NewInflightGuard()

		r1, err := guard.Acquire("meal_plan", "user-1")
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer r1()

		// Same user, different feature.
		r2, err := guard.Acquire("grocery_list", "user-1")
		if err != nil {
			t.Fatalf("Acquire for different feature failed: %v", err)
		}
		defer r2()

		// Same feature, different user.
		r3, err := guard.Acquire("meal_plan", "user-2")
		if err != nil {
			t.Fatalf("Acquire for different user failed: %v", err)
		}
		defer r3()
	})

	t.Run("ReleaseIsIdempotent", func(t *testing.T) {
		guard := NewInflightGuard()

		release, err := guard.Acquire("meal_plan", "user-1")
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		release()
		release()

		// A double release must not free a slot someone else holds.
		releaseB, err := guard.Acquire("meal_plan", "user-1")
		if err != nil {
			t.Fatalf("Re-acquire failed: %v", err)
		}
		release()
		if _, err := guard.Acquire("meal_plan", "user-1"); !errors.Is(err, ErrInFlight) {
			t.Fatalf("Stale release freed an active slot: %v", err)
		}
		releaseB()
	})
}
