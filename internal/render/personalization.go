package render

import (
	"encoding/json"
	"strings"
)

// Personalization is the tagged customization document attached to a line
// item. The JSON field names follow the order service's wire format.
type Personalization struct {
	AddOn              string  `json:"agregado,omitempty"`
	Sauces             []string `json:"salsas,omitempty"`
	RemovedIngredients []string `json:"sinIngredientes,omitempty"`
	Drinks             []Drink  `json:"bebidas,omitempty"`
	FreeText           string   `json:"detalles,omitempty"`
}

// Drink is one drink entry inside a personalization document.
type Drink struct {
	Name   string `json:"nombre"`
	Flavor string `json:"sabor,omitempty"`
}

// ParsePersonalization decodes a raw personalization payload. Malformed or
// non-JSON content degrades to a single free-text fragment instead of
// failing the render.
func ParsePersonalization(raw string) Personalization {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Personalization{}
	}

	var p Personalization
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Personalization{FreeText: raw}
	}
	return p
}

// IsZero reports whether no personalization fragment is present.
func (p Personalization) IsZero() bool {
	return p.AddOn == "" &&
		len(p.Sauces) == 0 &&
		len(p.RemovedIngredients) == 0 &&
		len(p.Drinks) == 0 &&
		p.FreeText == ""
}

// Lines renders each present fragment as one printable line. Absent
// fragments produce no output.
func (p Personalization) Lines() []string {
	var lines []string

	if p.AddOn != "" {
		lines = append(lines, "Agregado: "+p.AddOn)
	}
	if len(p.Sauces) > 0 {
		lines = append(lines, "Salsas: "+strings.Join(p.Sauces, ", "))
	}
	if len(p.RemovedIngredients) > 0 {
		lines = append(lines, "Sin: "+strings.Join(p.RemovedIngredients, ", "))
	}
	if len(p.Drinks) > 0 {
		names := make([]string, len(p.Drinks))
		for i, d := range p.Drinks {
			if d.Flavor != "" {
				names[i] = d.Name + " (" + d.Flavor + ")"
			} else {
				names[i] = d.Name
			}
		}
		lines = append(lines, "Bebidas: "+strings.Join(names, ", "))
	}
	if p.FreeText != "" {
		lines = append(lines, p.FreeText)
	}

	return lines
}
