package grocery

import (
	"encoding/json"
	"fmt"
	"strings"

	"platewise/internal/gen"
)

// wireItem is the shape the model sends: quantity and unit may arrive as
// separate fields.
type wireItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

// Normalize validates and coerces an extracted payload into a List. Items
// without a name are dropped (a partial shopping list is still useful),
// unknown categories are clamped to FallbackCategory, and quantity+unit are
// joined into one display string.
func Normalize(payload json.RawMessage) (*List, error) {
	var wire struct {
		Items []wireItem `json:"items"`
	}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, &gen.SchemaMismatchError{Feature: Feature, Reason: fmt.Sprintf("not a grocery list object: %v", err)}
	}

	list := &List{Items: make([]Item, 0, len(wire.Items))}
	for _, w := range wire.Items {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			continue
		}
		list.Items = append(list.Items, Item{
			Name:     name,
			Quantity: joinQuantity(w.Quantity, w.Unit),
			Category: coerceCategory(w.Category),
		})
	}
	return list, nil
}

// joinQuantity merges quantity and unit into a single display string,
// passing through whichever part exists.
func joinQuantity(quantity, unit string) string {
	quantity = strings.TrimSpace(quantity)
	unit = strings.TrimSpace(unit)
	switch {
	case quantity != "" && unit != "":
		return quantity + " " + unit
	case quantity != "":
		return quantity
	default:
		return unit
	}
}

func coerceCategory(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, c := range Categories {
		if strings.EqualFold(trimmed, c) {
			return c
		}
	}
	return FallbackCategory
}
