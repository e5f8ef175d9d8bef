package services

import (
	"math"
	"math/rand"
	"strings"
)

// Category base prices in LKR for the heuristic estimator.
var basePrices = []struct {
	keyword string
	price   float64
}{
	{"tech", 65000},
	{"electron", 65000},
	{"fashion", 3500},
	{"cloth", 3500},
	{"home", 12000},
	{"furniture", 12000},
	{"vehicle", 1500000},
	{"music", 25000},
}

var conditionMultipliers = map[string]float64{
	"NEW":      1.3,
	"LIKE_NEW": 1.1,
	"GOOD":     0.8,
	"FAIR":     0.5,
	"POOR":     0.2,
}

// SuggestPrice estimates an asking price from the listing's category and
// condition: a category base, a condition multiplier, and up to ±15% of
// variance, rounded to the nearest 100 with a floor of 500.
func SuggestPrice(category, condition string) int {
	base := 5000.0
	lower := strings.ToLower(category)
	for _, entry := range basePrices {
		if strings.Contains(lower, entry.keyword) {
			base = entry.price
			break
		}
	}

	if multiplier, ok := conditionMultipliers[condition]; ok {
		base *= multiplier
	}

	variance := rand.Float64()*base*0.3 - base*0.15
	price := math.Round((base+variance)/100) * 100
	if price < 500 {
		price = 500
	}
	return int(price)
}
