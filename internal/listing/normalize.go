/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package listing

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Seednode/homebet/internal/models"
)

const (
	// PlaceholderImage is substituted when a listing carries no usable photos.
	PlaceholderImage = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800"

	// MaxImages caps the photos kept per listing.
	MaxImages = 5

	defaultAddress     = "Unknown address"
	defaultCity        = "Unknown city"
	defaultState       = "US"
	defaultDescription = "No description available"
)

// Normalize converts one upstream record into a Property. It reports false
// when the record lacks an identifier or a positive price, and never panics.
func Normalize(raw gjson.Result) (p models.Property, ok bool) {
	defer func() {
		if recover() != nil {
			p, ok = models.Property{}, false
		}
	}()

	if !raw.IsObject() {
		return models.Property{}, false
	}

	id := firstTruthy(raw, "property_id", "listing_id", "id").String()
	price := firstPresent(raw, "list_price", "price").Float()
	if id == "" || !(price > 0) {
		return models.Property{}, false
	}

	addr := addressObject(raw)

	p = models.Property{
		ID:           id,
		Address:      stringOr(firstTruthy(addr, "line", "address", "street"), defaultAddress),
		City:         stringOr(firstTruthy(addr, "city", "municipality"), defaultCity),
		State:        stringOr(firstTruthy(addr, "state_code", "state"), defaultState),
		ZipCode:      stringOr(firstTruthy(addr, "postal_code", "zip"), ""),
		Price:        price,
		Bedrooms:     firstPresent(raw, "beds", "bedrooms", "beds_max").Float(),
		Bathrooms:    firstPresent(raw, "baths_full", "bathrooms", "baths", "full_baths").Float(),
		SquareFeet:   firstPresent(raw, "building_size.size", "lot_size.size", "sqft", "square_feet").Float(),
		LotSize:      firstPresent(raw, "lot_size.size", "lot_size").Float(),
		YearBuilt:    int(firstPresent(raw, "year_built", "yearBuilt").Int()),
		PropertyType: ParsePropertyType(firstTruthy(raw, "prop_type", "property_type").String()),
		Images:       collectImages(raw),
		Description:  description(raw),
		Features:     features(raw),
		Source:       models.SourceAPI,
	}

	return p, true
}

// NormalizeAll normalizes every record, dropping the ones Normalize rejects.
func NormalizeAll(records []gjson.Result) []models.Property {
	out := make([]models.Property, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		p, ok := Normalize(r)
		if !ok {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ParsePropertyType maps provider type labels onto the known property types.
// Unknown labels fall back to SingleFamily.
func ParsePropertyType(label string) models.PropertyType {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(label))
	switch key {
	case "condo", "condos", "condominium", "condominiums", "coop", "condop", "apartment":
		return models.Condo
	case "townhouse", "townhouses", "townhome", "townhomes", "rowhouse", "condotownhome", "condotownhomerowhomecoop":
		return models.Townhouse
	case "multifamily", "duplex", "triplex", "duplextriplex":
		return models.MultiFamily
	default:
		return models.SingleFamily
	}
}

// addressObject picks the object holding address fields. Realtor-style
// records nest it under location.address.
func addressObject(raw gjson.Result) gjson.Result {
	for _, path := range []string{"address", "location.address", "location"} {
		if v := raw.Get(path); v.IsObject() {
			return v
		}
	}
	return gjson.Result{}
}

// firstPresent returns the first path whose value is neither missing nor null.
func firstPresent(obj gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		if v := obj.Get(path); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// firstTruthy returns the first path whose value is present and not empty,
// zero or false.
func firstTruthy(obj gjson.Result, paths ...string) gjson.Result {
	for _, path := range paths {
		v := obj.Get(path)
		switch v.Type {
		case gjson.String:
			if v.Str != "" {
				return v
			}
		case gjson.Number:
			if v.Num != 0 {
				return v
			}
		case gjson.True, gjson.JSON:
			return v
		}
	}
	return gjson.Result{}
}

func stringOr(v gjson.Result, def string) string {
	if v.Type == gjson.String || v.Type == gjson.Number {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return def
}

func collectImages(raw gjson.Result) []string {
	seen := make(map[string]struct{}, MaxImages)
	images := make([]string, 0, MaxImages)

	add := func(v gjson.Result) {
		url := imageURL(v)
		if url == "" || len(images) >= MaxImages {
			return
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		images = append(images, url)
	}

	for _, path := range []string{"photos", "photo", "primary_photo", "thumbnail", "primary_image_url"} {
		v := raw.Get(path)
		if v.IsArray() {
			for _, item := range v.Array() {
				add(item)
			}
			continue
		}
		add(v)
	}

	if len(images) == 0 {
		images = append(images, PlaceholderImage)
	}
	return images
}

func imageURL(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return strings.TrimSpace(v.Str)
	case v.IsObject():
		return stringOr(firstTruthy(v, "href", "url"), "")
	}
	return ""
}

func description(raw gjson.Result) string {
	for _, path := range []string{"description", "description.text", "publicRemarks", "public_remarks"} {
		if v := raw.Get(path); v.Type == gjson.String {
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	return defaultDescription
}

func features(raw gjson.Result) []string {
	out := []string{}
	v := firstPresent(raw, "features", "tags")
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.Str); s != "" {
			out = append(out, s)
		}
	}
	return out
}
