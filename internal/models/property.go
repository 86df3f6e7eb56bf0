/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package models

// PropertyType is the categorical kind of a listing.
type PropertyType string

const (
	SingleFamily PropertyType = "Single Family"
	Condo        PropertyType = "Condo"
	Townhouse    PropertyType = "Townhouse"
	MultiFamily  PropertyType = "Multi-Family"
)

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	switch t {
	case SingleFamily, Condo, Townhouse, MultiFamily:
		return true
	}
	return false
}

// Source records where a listing came from. It is shown to players and never
// used for scoring.
type Source string

const (
	SourceMock Source = "mock"
	SourceAPI  Source = "api"
)

// Property is an immutable listing record.
type Property struct {
	ID           string       `json:"id"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	ZipCode      string       `json:"zipCode"`
	Price        float64      `json:"price"`
	Bedrooms     float64      `json:"bedrooms"`
	Bathrooms    float64      `json:"bathrooms"`
	SquareFeet   float64      `json:"squareFeet"`
	LotSize      float64      `json:"lotSize"`
	YearBuilt    int          `json:"yearBuilt"`
	PropertyType PropertyType `json:"propertyType"`
	Images       []string     `json:"images"`
	Description  string       `json:"description"`
	Features     []string     `json:"features"`
	Source       Source       `json:"source,omitempty"`
}

// Admissible reports whether p may be placed in a session's round sequence.
func (p Property) Admissible() bool {
	return p.ID != "" && p.Price > 0
}

// Clone returns a copy of p that shares no slices with the original.
func (p Property) Clone() Property {
	p.Images = append([]string(nil), p.Images...)
	p.Features = append([]string(nil), p.Features...)
	return p
}
