package models

import "strings"

// OutfitAnalysis is the structured answer of the vision model.
type OutfitAnalysis struct {
	OutfitDescription string       `json:"outfit_description"`
	Style             string       `json:"style"`
	ColorPalette      string       `json:"color_palette"`
	Suggestions       []Suggestion `json:"suggestions"`
}

// Suggestion is one recommended item.
type Suggestion struct {
	Item               string  `json:"item"`
	Description        string  `json:"description,omitempty"`
	SearchTerm         string  `json:"search_term,omitempty"`
	EstimatedPriceLow  float64 `json:"estimated_price_low,omitempty"`
	EstimatedPriceHigh float64 `json:"estimated_price_high,omitempty"`
	Category           string  `json:"category,omitempty"`
}

// Categories the model is asked to choose from.
const (
	CategoryTops        = "tops"
	CategoryBottoms     = "bottoms"
	CategoryShoes       = "shoes"
	CategoryAccessories = "accessories"
	CategoryOuterwear   = "outerwear"
	CategoryBags        = "bags"
)

// Gender values accepted when building links.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "unknown"
)

// Term returns the search term, falling back to the item name.
func (s Suggestion) Term() string {
	if term := strings.TrimSpace(s.SearchTerm); term != "" {
		return term
	}
	return strings.TrimSpace(s.Item)
}

// NormalizedCategory lowercases and trims the category.
func (s Suggestion) NormalizedCategory() string {
	return strings.ToLower(strings.TrimSpace(s.Category))
}
