package catalog

import (
	"testing"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
)

func strPtr(value string) *string {
	return &value
}

func sizeModeProduct() *models.Product {
	return &models.Product{
		Title: "Striped Tee",
		Sizes: models.SizeInventories{
			{Size: "2T", Quantity: 5},
			{Size: "3T", Quantity: 0},
		},
	}
}

func colorModeProduct() *models.Product {
	return &models.Product{
		Title: "Raincoat",
		Colors: models.ColorInventories{
			{
				Name:    "Yellow",
				HexCode: "#ffd400",
				Inventory: []models.SizeInventory{
					{Size: "2T", Quantity: 4},
					{Size: "4T", Quantity: 0},
				},
			},
			{
				Name:      "Navy",
				HexCode:   "#001f5b",
				Inventory: []models.SizeInventory{{Size: "2T", Quantity: 2}},
			},
		},
	}
}

func TestSizeLedgerQuantityAndAvailability(t *testing.T) {
	ledger := &sizeLedger{}
	product := sizeModeProduct()

	if got := ledger.Quantity(product, VariantSelector{Size: "2T"}); got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
	if got := ledger.Quantity(product, VariantSelector{Size: "6T"}); got != 0 {
		t.Fatalf("expected 0 for absent variant, got %d", got)
	}
	if !ledger.Available(product, VariantSelector{Size: "2T"}, 5) {
		t.Fatal("expected availability at exact stock level")
	}
	if ledger.Available(product, VariantSelector{Size: "2T"}, 6) {
		t.Fatal("expected unavailability above stock level")
	}
}

func TestSizeLedgerSetQuantityClampsAndCreates(t *testing.T) {
	ledger := &sizeLedger{}
	product := sizeModeProduct()

	ledger.SetQuantity(product, VariantSelector{Size: "2T"}, -3)
	if got := ledger.Quantity(product, VariantSelector{Size: "2T"}); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}

	ledger.SetQuantity(product, VariantSelector{Size: "5T"}, 7)
	if got := ledger.Quantity(product, VariantSelector{Size: "5T"}); got != 7 {
		t.Fatalf("expected created variant with 7, got %d", got)
	}
}

func TestSizeLedgerReduce(t *testing.T) {
	ledger := &sizeLedger{}
	product := sizeModeProduct()

	if ledger.Reduce(product, VariantSelector{Size: "2T"}, 6) {
		t.Fatal("expected reduce to fail above stock")
	}
	if got := ledger.Quantity(product, VariantSelector{Size: "2T"}); got != 5 {
		t.Fatalf("failed reduce must not mutate, got %d", got)
	}

	if !ledger.Reduce(product, VariantSelector{Size: "2T"}, 5) {
		t.Fatal("expected reduce to succeed at exact stock")
	}
	if got := ledger.Quantity(product, VariantSelector{Size: "2T"}); got != 0 {
		t.Fatalf("expected 0 after reduce, got %d", got)
	}

	if ledger.Reduce(product, VariantSelector{Size: "6T"}, 1) {
		t.Fatal("expected reduce to fail for absent variant")
	}
}

func TestSizeLedgerRejectsColorOperations(t *testing.T) {
	ledger := &sizeLedger{}
	product := sizeModeProduct()

	err := ledger.AddColor(product, "Red", "#ff0000", nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = ledger.ValidateSelector(product, VariantSelector{Size: "2T", Color: strPtr("Red")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for color selector, got %v", err)
	}
}

func TestSizeLedgerDerivedViews(t *testing.T) {
	ledger := &sizeLedger{}
	product := sizeModeProduct()

	if got := ledger.TotalQuantity(product); got != 5 {
		t.Fatalf("expected total 5, got %d", got)
	}
	sizes := ledger.AvailableSizes(product)
	if len(sizes) != 1 || sizes[0] != "2T" {
		t.Fatalf("expected only 2T available, got %v", sizes)
	}
	if colors := ledger.AvailableColors(product); colors != nil {
		t.Fatalf("expected nil colors in size mode, got %v", colors)
	}
}

func TestColorLedgerQuantityAndReduce(t *testing.T) {
	ledger := &colorLedger{}
	product := colorModeProduct()
	yellow2T := VariantSelector{Size: "2T", Color: strPtr("Yellow")}

	if got := ledger.Quantity(product, yellow2T); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := ledger.Quantity(product, VariantSelector{Size: "2T"}); got != 0 {
		t.Fatalf("expected 0 without a color, got %d", got)
	}

	if ledger.Reduce(product, yellow2T, 5) {
		t.Fatal("expected reduce above stock to fail")
	}
	if !ledger.Reduce(product, yellow2T, 3) {
		t.Fatal("expected reduce within stock to succeed")
	}
	if got := ledger.Quantity(product, yellow2T); got != 1 {
		t.Fatalf("expected 1 left, got %d", got)
	}
}

func TestColorLedgerSetQuantityCreatesBucketWithPlaceholderHex(t *testing.T) {
	ledger := &colorLedger{}
	product := colorModeProduct()

	ledger.SetQuantity(product, VariantSelector{Size: "3T", Color: strPtr("Green")}, 9)

	bucket := ledger.findColor(product, "Green")
	if bucket == nil {
		t.Fatal("expected Green bucket to be created")
	}
	if bucket.HexCode != placeholderHex {
		t.Fatalf("expected placeholder hex, got %s", bucket.HexCode)
	}
	if got := ledger.Quantity(product, VariantSelector{Size: "3T", Color: strPtr("Green")}); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestColorLedgerValidateSelector(t *testing.T) {
	ledger := &colorLedger{}
	product := colorModeProduct()

	t.Run("declared color passes", func(t *testing.T) {
		if err := ledger.ValidateSelector(product, VariantSelector{Size: "2T", Color: strPtr("Yellow")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing color fails validation", func(t *testing.T) {
		err := ledger.ValidateSelector(product, VariantSelector{Size: "2T"})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("undeclared color carries valid set", func(t *testing.T) {
		err := ledger.ValidateSelector(product, VariantSelector{Size: "2T", Color: strPtr("Pink")})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeInvalidVariant {
			t.Fatalf("expected invalid variant error, got %v", err)
		}
		details, ok := typed.Details().(map[string]any)
		if !ok {
			t.Fatalf("expected details map, got %T", typed.Details())
		}
		valid, ok := details["valid_colors"].([]string)
		if !ok || len(valid) != 2 {
			t.Fatalf("expected both declared colors in details, got %v", details["valid_colors"])
		}
	})
}

func TestColorLedgerAddAndRemoveColor(t *testing.T) {
	ledger := &colorLedger{}
	product := colorModeProduct()

	err := ledger.AddColor(product, "Yellow", "#ffff00", nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDuplicateVariant {
		t.Fatalf("expected duplicate variant error, got %v", err)
	}

	if err := ledger.AddColor(product, "Red", "", []models.SizeInventory{{Size: "2T", Quantity: -1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	red := ledger.findColor(product, "Red")
	if red == nil || red.HexCode != placeholderHex {
		t.Fatalf("expected Red with placeholder hex, got %+v", red)
	}
	if red.Inventory[0].Quantity != 0 {
		t.Fatalf("expected negative starting quantity clamped to 0, got %d", red.Inventory[0].Quantity)
	}

	ledger.RemoveColor(product, "Yellow")
	if ledger.findColor(product, "Yellow") != nil {
		t.Fatal("expected Yellow to be removed")
	}
	// removing an absent color is a no-op
	ledger.RemoveColor(product, "Yellow")
	if len(product.Colors) != 2 {
		t.Fatalf("expected 2 colors left, got %d", len(product.Colors))
	}
}

func TestColorLedgerDerivedViews(t *testing.T) {
	ledger := &colorLedger{}
	product := colorModeProduct()

	if got := ledger.TotalQuantity(product); got != 6 {
		t.Fatalf("expected total 6, got %d", got)
	}

	sizes := ledger.AvailableSizes(product)
	if len(sizes) != 1 || sizes[0] != "2T" {
		t.Fatalf("expected only 2T across colors, got %v", sizes)
	}

	colors := ledger.AvailableColors(product)
	if len(colors) != 2 {
		t.Fatalf("expected both colors in stock, got %v", colors)
	}
}

func TestNewLedgerModeSelection(t *testing.T) {
	if _, err := NewLedger(enums.InventoryModeSize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewLedger(enums.InventoryModeColorSize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewLedger(enums.InventoryMode("sku")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
