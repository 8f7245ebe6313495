package enums

import "fmt"

// InventoryMode selects which variant schema generation a deployment runs:
// stock keyed by size alone, or by color and size. The two shapes are
// mutually exclusive; a deployment never mixes them.
type InventoryMode string

const (
	InventoryModeSize      InventoryMode = "size"
	InventoryModeColorSize InventoryMode = "color_size"
)

var validInventoryModes = []InventoryMode{
	InventoryModeSize,
	InventoryModeColorSize,
}

// String implements fmt.Stringer.
func (m InventoryMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known InventoryMode.
func (m InventoryMode) IsValid() bool {
	for _, candidate := range validInventoryModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// UsesColor reports whether variants carry a color dimension.
func (m InventoryMode) UsesColor() bool {
	return m == InventoryModeColorSize
}

// ParseInventoryMode converts raw input into an InventoryMode.
func ParseInventoryMode(value string) (InventoryMode, error) {
	for _, candidate := range validInventoryModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory mode %q", value)
}
