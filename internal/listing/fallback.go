/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package listing

import (
	"math/rand/v2"

	"github.com/Seednode/homebet/internal/models"
)

// pool is the default round sequence used until, or instead of, live listings.
var pool = []models.Property{
	{
		ID: "1", Address: "123 Mountain View Dr", City: "Provo", State: "UT", ZipCode: "84604",
		Price: 485000, Bedrooms: 4, Bathrooms: 3, SquareFeet: 2850, LotSize: 8500, YearBuilt: 2018,
		PropertyType: models.SingleFamily,
		Images: []string{
			"https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=800",
			"https://images.unsplash.com/photo-1583608205776-bfd35f0d9f83?w=800",
		},
		Description: "Beautiful modern home with mountain views",
		Features:    []string{"Granite Countertops", "2-Car Garage", "Hardwood Floors", "Smart Home"},
	},
	{
		ID: "2", Address: "456 University Ave #302", City: "Orem", State: "UT", ZipCode: "84057",
		Price: 285000, Bedrooms: 2, Bathrooms: 2, SquareFeet: 1150, LotSize: 0, YearBuilt: 2021,
		PropertyType: models.Condo,
		Images: []string{
			"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?w=800",
			"https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=800",
		},
		Description: "Modern condo near shopping and dining",
		Features:    []string{"Balcony", "In-Unit Laundry", "Gym Access", "Pool"},
	},
	{
		ID: "3", Address: "789 Canyon Rd", City: "Spanish Fork", State: "UT", ZipCode: "84660",
		Price: 625000, Bedrooms: 5, Bathrooms: 4, SquareFeet: 3800, LotSize: 12000, YearBuilt: 2020,
		PropertyType: models.SingleFamily,
		Images: []string{
			"https://images.unsplash.com/photo-1600596542815-ffad4c1539a9?w=800",
			"https://images.unsplash.com/photo-1600607687939-ce8a6c25118c?w=800",
		},
		Description: "Luxury home with premium finishes throughout",
		Features:    []string{"Theater Room", "3-Car Garage", "Wine Cellar", "Chef Kitchen"},
	},
	{
		ID: "4", Address: "321 Maple St", City: "Lehi", State: "UT", ZipCode: "84043",
		Price: 395000, Bedrooms: 3, Bathrooms: 2, SquareFeet: 1950, LotSize: 6000, YearBuilt: 2015,
		PropertyType: models.Townhouse,
		Images: []string{
			"https://images.unsplash.com/photo-1580587771525-78b9dba3b914?w=800",
			"https://images.unsplash.com/photo-1565953522043-baea26b83b7e?w=800",
		},
		Description: "Charming townhouse in family-friendly neighborhood",
		Features:    []string{"Fenced Yard", "Updated Kitchen", "Storage Room", "HOA Maintained"},
	},
	{
		ID: "5", Address: "654 Oak Ave", City: "Pleasant Grove", State: "UT", ZipCode: "84062",
		Price: 550000, Bedrooms: 4, Bathrooms: 3.5, SquareFeet: 3200, LotSize: 9500, YearBuilt: 2019,
		PropertyType: models.SingleFamily,
		Images: []string{
			"https://images.unsplash.com/photo-1613490493576-7fde63acd811?w=800",
			"https://images.unsplash.com/photo-1613977257363-707ba9348227?w=800",
		},
		Description: "Stunning two-story home with open floor plan",
		Features:    []string{"Vaulted Ceilings", "Master Suite", "Landscaped Yard", "Solar Panels"},
	},
	{
		ID: "6", Address: "987 Pine Circle", City: "American Fork", State: "UT", ZipCode: "84003",
		Price: 425000, Bedrooms: 3, Bathrooms: 2.5, SquareFeet: 2400, LotSize: 7200, YearBuilt: 2017,
		PropertyType: models.SingleFamily,
		Images: []string{
			"https://images.unsplash.com/photo-1570129477492-45c003edd2be?w=800",
			"https://images.unsplash.com/photo-1568605114967-8130f3a36994?w=800",
		},
		Description: "Well-maintained home in quiet cul-de-sac",
		Features:    []string{"Fireplace", "Walk-in Closets", "Covered Patio", "RV Parking"},
	},
	{
		ID: "7", Address: "246 Aspen Way #105", City: "Saratoga Springs", State: "UT", ZipCode: "84045",
		Price: 315000, Bedrooms: 2, Bathrooms: 2, SquareFeet: 1280, LotSize: 0, YearBuilt: 2022,
		PropertyType: models.Condo,
		Images: []string{
			"https://images.unsplash.com/photo-1512917774080-9991f1c4c750?w=800",
			"https://images.unsplash.com/photo-1493809842364-78817add7ffb?w=800",
		},
		Description: "Brand new condo with lake access",
		Features:    []string{"Lake Views", "Clubhouse", "Fitness Center", "Walking Trails"},
	},
	{
		ID: "8", Address: "135 Summit Dr", City: "Highland", State: "UT", ZipCode: "84003",
		Price: 875000, Bedrooms: 6, Bathrooms: 5, SquareFeet: 5200, LotSize: 18000, YearBuilt: 2021,
		PropertyType: models.SingleFamily,
		Images: []string{
			"https://images.unsplash.com/photo-1600047509807-ba8f99d2cdde?w=800",
			"https://images.unsplash.com/photo-1600566753086-00878bfb9b5c?w=800",
		},
		Description: "Executive estate with panoramic valley views",
		Features:    []string{"Pool", "Sport Court", "Guest Suite", "Smart Home System"},
	},
}

// PoolSize is the number of listings available without an upstream provider.
var PoolSize = len(pool)

// Fallback returns up to n shuffled listings from the built-in pool, tagged
// as mock data.
func Fallback(n int) []models.Property {
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return []models.Property{}
	}

	order := rand.Perm(len(pool))
	out := make([]models.Property, n)
	for i := range n {
		p := pool[order[i]].Clone()
		p.Source = models.SourceMock
		out[i] = p
	}
	return out
}
