package core_test

import (
	"context"
	"testing"

	"procurement-console/internal/core"
)

func TestLookupService_ActiveMasterData(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewLookupService(pool)

	t.Run("Vendors_ExcludeInactive", func(t *testing.T) {
		vendors, err := svc.Vendors(ctx)
		if err != nil {
			t.Fatalf("Vendors: %v", err)
		}
		if len(vendors) != 1 || vendors[0].Code != "V001" {
			t.Fatalf("expected only V001, got %+v", vendors)
		}
		if vendors[0].PaymentTermsDays != 30 {
			t.Errorf("expected default payment terms 30, got %d", vendors[0].PaymentTermsDays)
		}
	})

	t.Run("Locations_OrderedByName", func(t *testing.T) {
		locations, err := svc.Locations(ctx)
		if err != nil {
			t.Fatalf("Locations: %v", err)
		}
		if len(locations) != 2 || locations[0].Name != "Head Office" {
			t.Fatalf("expected Head Office first, got %+v", locations)
		}
	})

	t.Run("ItemsByID_IncludesInactive", func(t *testing.T) {
		if _, err := pool.Exec(ctx, "UPDATE items SET is_active = false WHERE id = 3"); err != nil {
			t.Fatalf("deactivate item: %v", err)
		}
		active, err := svc.Items(ctx)
		if err != nil {
			t.Fatalf("Items: %v", err)
		}
		if len(active) != 2 {
			t.Errorf("expected 2 active items, got %d", len(active))
		}
		byID, err := svc.ItemsByID(ctx, []int{2, 3, 99})
		if err != nil {
			t.Fatalf("ItemsByID: %v", err)
		}
		if len(byID) != 2 {
			t.Fatalf("expected items 2 and 3, got %d", len(byID))
		}
		if byID[3].Inventory {
			t.Error("item 3 should be non-inventory")
		}
		if byID[2].Rate.StringFixed(2) != "450.00" {
			t.Errorf("expected cement rate 450.00, got %s", byID[2].Rate)
		}
	})

	t.Run("Users_ResolveDisplayNames", func(t *testing.T) {
		users, err := svc.Users(ctx)
		if err != nil {
			t.Fatalf("Users: %v", err)
		}
		names := core.UserNames(users)
		if names[1] != "Asad Khan" {
			t.Errorf("expected full name for user 1, got %q", names[1])
		}
		if names[2] != "store1" {
			t.Errorf("expected username fallback for user 2, got %q", names[2])
		}
		if _, ok := names[3]; ok {
			t.Error("inactive user should not be listed")
		}
	})
}
