package catalog

import (
	"fmt"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
)

// placeholderHex is assigned when SetQuantity has to create a color bucket
// that was never declared through AddColor.
const placeholderHex = "#000000"

// VariantSelector addresses one purchasable variant. Color is set only in
// color+size inventory mode.
type VariantSelector struct {
	Size  string
	Color *string
}

func (s VariantSelector) String() string {
	if s.Color != nil {
		return fmt.Sprintf("%s/%s", *s.Color, s.Size)
	}
	return s.Size
}

// Ledger performs all stock accounting against a product's embedded inventory
// document. Implementations mutate the product in memory only; persisting the
// product is the caller's job, inside whatever transaction it is running.
type Ledger interface {
	// Available reports whether the variant exists with at least qty in stock.
	Available(p *models.Product, sel VariantSelector, qty int) bool
	// Quantity returns the stored quantity, 0 when the variant is absent.
	Quantity(p *models.Product, sel VariantSelector) int
	// SetQuantity clamps qty to >=0 and creates the variant when absent.
	SetQuantity(p *models.Product, sel VariantSelector, qty int)
	// Reduce decrements the variant by qty. It fails without mutating when the
	// variant is absent or holds less than qty.
	Reduce(p *models.Product, sel VariantSelector, qty int) bool
	// ValidateSelector checks the selector shape against the product's
	// declared variants before any stock math.
	ValidateSelector(p *models.Product, sel VariantSelector) error
	// TotalQuantity sums stock over every variant.
	TotalQuantity(p *models.Product) int
	// AddColor declares a new color bucket. Size-mode ledgers reject it.
	AddColor(p *models.Product, name, hexCode string, inventory []models.SizeInventory) error
	// RemoveColor drops a color bucket and its size entries. No-op when absent.
	RemoveColor(p *models.Product, name string)
	// AvailableSizes lists sizes with quantity > 0, deduplicated.
	AvailableSizes(p *models.Product) []string
	// AvailableColors lists colors with any stock. Empty in size mode.
	AvailableColors(p *models.Product) []string
}

// NewLedger returns the ledger implementation for the deployment's inventory
// mode. The mode is fixed at startup; products carry only the matching shape.
func NewLedger(mode enums.InventoryMode) (Ledger, error) {
	switch mode {
	case enums.InventoryModeSize:
		return &sizeLedger{}, nil
	case enums.InventoryModeColorSize:
		return &colorLedger{}, nil
	default:
		return nil, fmt.Errorf("unsupported inventory mode %q", mode)
	}
}

// sizeLedger accounts stock in the flat size-keyed shape.
type sizeLedger struct{}

func (l *sizeLedger) Available(p *models.Product, sel VariantSelector, qty int) bool {
	return l.Quantity(p, sel) >= qty
}

func (l *sizeLedger) Quantity(p *models.Product, sel VariantSelector) int {
	for _, entry := range p.Sizes {
		if entry.Size == sel.Size {
			return entry.Quantity
		}
	}
	return 0
}

func (l *sizeLedger) SetQuantity(p *models.Product, sel VariantSelector, qty int) {
	if qty < 0 {
		qty = 0
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == sel.Size {
			p.Sizes[i].Quantity = qty
			return
		}
	}
	p.Sizes = append(p.Sizes, models.SizeInventory{Size: sel.Size, Quantity: qty})
}

func (l *sizeLedger) Reduce(p *models.Product, sel VariantSelector, qty int) bool {
	for i := range p.Sizes {
		if p.Sizes[i].Size == sel.Size {
			if p.Sizes[i].Quantity < qty {
				return false
			}
			p.Sizes[i].Quantity -= qty
			return true
		}
	}
	return false
}

func (l *sizeLedger) ValidateSelector(p *models.Product, sel VariantSelector) error {
	if sel.Size == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if sel.Color != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "color is not supported in size inventory mode")
	}
	return nil
}

func (l *sizeLedger) TotalQuantity(p *models.Product) int {
	total := 0
	for _, entry := range p.Sizes {
		total += entry.Quantity
	}
	return total
}

func (l *sizeLedger) AddColor(p *models.Product, name, hexCode string, inventory []models.SizeInventory) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "colors are not supported in size inventory mode")
}

func (l *sizeLedger) RemoveColor(p *models.Product, name string) {}

func (l *sizeLedger) AvailableSizes(p *models.Product) []string {
	sizes := make([]string, 0, len(p.Sizes))
	for _, entry := range p.Sizes {
		if entry.Quantity > 0 {
			sizes = append(sizes, entry.Size)
		}
	}
	return sizes
}

func (l *sizeLedger) AvailableColors(p *models.Product) []string {
	return nil
}

// colorLedger accounts stock in color buckets holding per-size counters.
type colorLedger struct{}

func (l *colorLedger) findColor(p *models.Product, name string) *models.ColorInventory {
	for i := range p.Colors {
		if p.Colors[i].Name == name {
			return &p.Colors[i]
		}
	}
	return nil
}

func (l *colorLedger) Available(p *models.Product, sel VariantSelector, qty int) bool {
	return l.Quantity(p, sel) >= qty
}

func (l *colorLedger) Quantity(p *models.Product, sel VariantSelector) int {
	if sel.Color == nil {
		return 0
	}
	bucket := l.findColor(p, *sel.Color)
	if bucket == nil {
		return 0
	}
	for _, entry := range bucket.Inventory {
		if entry.Size == sel.Size {
			return entry.Quantity
		}
	}
	return 0
}

func (l *colorLedger) SetQuantity(p *models.Product, sel VariantSelector, qty int) {
	if sel.Color == nil {
		return
	}
	if qty < 0 {
		qty = 0
	}
	bucket := l.findColor(p, *sel.Color)
	if bucket == nil {
		p.Colors = append(p.Colors, models.ColorInventory{
			Name:      *sel.Color,
			HexCode:   placeholderHex,
			Inventory: []models.SizeInventory{{Size: sel.Size, Quantity: qty}},
		})
		return
	}
	for i := range bucket.Inventory {
		if bucket.Inventory[i].Size == sel.Size {
			bucket.Inventory[i].Quantity = qty
			return
		}
	}
	bucket.Inventory = append(bucket.Inventory, models.SizeInventory{Size: sel.Size, Quantity: qty})
}

func (l *colorLedger) Reduce(p *models.Product, sel VariantSelector, qty int) bool {
	if sel.Color == nil {
		return false
	}
	bucket := l.findColor(p, *sel.Color)
	if bucket == nil {
		return false
	}
	for i := range bucket.Inventory {
		if bucket.Inventory[i].Size == sel.Size {
			if bucket.Inventory[i].Quantity < qty {
				return false
			}
			bucket.Inventory[i].Quantity -= qty
			return true
		}
	}
	return false
}

func (l *colorLedger) ValidateSelector(p *models.Product, sel VariantSelector) error {
	if sel.Size == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if sel.Color == nil || *sel.Color == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "color is required")
	}
	if l.findColor(p, *sel.Color) == nil {
		declared := make([]string, 0, len(p.Colors))
		for _, bucket := range p.Colors {
			declared = append(declared, bucket.Name)
		}
		return pkgerrors.New(pkgerrors.CodeInvalidVariant,
			fmt.Sprintf("color %q is not offered for this product", *sel.Color)).
			WithDetails(map[string]any{"valid_colors": declared})
	}
	return nil
}

func (l *colorLedger) TotalQuantity(p *models.Product) int {
	total := 0
	for _, bucket := range p.Colors {
		for _, entry := range bucket.Inventory {
			total += entry.Quantity
		}
	}
	return total
}

func (l *colorLedger) AddColor(p *models.Product, name, hexCode string, inventory []models.SizeInventory) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "color name is required")
	}
	if l.findColor(p, name) != nil {
		return pkgerrors.New(pkgerrors.CodeDuplicateVariant,
			fmt.Sprintf("color %q already exists", name)).
			WithDetails(map[string]any{"color": name})
	}
	if hexCode == "" {
		hexCode = placeholderHex
	}
	clamped := make([]models.SizeInventory, 0, len(inventory))
	for _, entry := range inventory {
		if entry.Quantity < 0 {
			entry.Quantity = 0
		}
		clamped = append(clamped, entry)
	}
	p.Colors = append(p.Colors, models.ColorInventory{
		Name:      name,
		HexCode:   hexCode,
		Inventory: clamped,
	})
	return nil
}

func (l *colorLedger) RemoveColor(p *models.Product, name string) {
	kept := p.Colors[:0]
	for _, bucket := range p.Colors {
		if bucket.Name != name {
			kept = append(kept, bucket)
		}
	}
	p.Colors = kept
}

func (l *colorLedger) AvailableSizes(p *models.Product) []string {
	seen := map[string]struct{}{}
	var sizes []string
	for _, bucket := range p.Colors {
		for _, entry := range bucket.Inventory {
			if entry.Quantity <= 0 {
				continue
			}
			if _, ok := seen[entry.Size]; ok {
				continue
			}
			seen[entry.Size] = struct{}{}
			sizes = append(sizes, entry.Size)
		}
	}
	return sizes
}

func (l *colorLedger) AvailableColors(p *models.Product) []string {
	var colors []string
	for _, bucket := range p.Colors {
		for _, entry := range bucket.Inventory {
			if entry.Quantity > 0 {
				colors = append(colors, bucket.Name)
				break
			}
		}
	}
	return colors
}
