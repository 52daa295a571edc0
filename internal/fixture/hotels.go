package fixture

import (
	"fmt"
	"sort"
)

type Location struct {
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Source        string   `json:"source"`
	SourceIcon    string   `json:"source_icon"`
	Address       string   `json:"address"`
	PricePerNight float64  `json:"price_per_night"`
	TotalPrice    float64  `json:"total_price"`
	Rating        float64  `json:"rating"`
	Amenities     []string `json:"amenities"`
	Availability  bool     `json:"availability"`
	IsInternal    bool     `json:"is_internal"`
	Savings       float64  `json:"savings"`
	ImageURL      string   `json:"image_url"`
}

var sources = []string{"Internal Housing", "Airbnb", "Expedia", "Kayak", "Booking.com", "Hotels.com"}

// Sources lists every offer source a search covers.
func Sources() []string {
	return append([]string(nil), sources...)
}

// Hotels builds the offer list for a location, cheapest first. Offers with
// equal total price keep their catalogue order.
func Hotels(loc Location) []Hotel {
	city := loc.City
	if city == "" {
		city = "Unknown City"
	}
	state := loc.State

	hotels := []Hotel{
		{
			ID:            "hotel-001",
			Name:          "SurfaceFlow Internal Housing",
			Source:        "Internal Housing",
			SourceIcon:    "🏠",
			Address:       fmt.Sprintf("123 Company Blvd, %s, %s", city, state),
			PricePerNight: 0,
			TotalPrice:    0,
			Rating:        5.0,
			Amenities:     []string{"Free WiFi", "Kitchen", "Washer/Dryer", "Free Parking"},
			Availability:  true,
			IsInternal:    true,
			Savings:       175.00,
			ImageURL:      "https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?w=400",
		},
		{
			ID:            "hotel-002",
			Name:          "Comfort Suites " + city,
			Source:        "Airbnb",
			SourceIcon:    "🏡",
			Address:       fmt.Sprintf("456 Main St, %s, %s", city, state),
			PricePerNight: 89.00,
			TotalPrice:    267.00,
			Rating:        4.5,
			Amenities:     []string{"Free WiFi", "Pool", "Breakfast Included"},
			Availability:  true,
			Savings:       45.00,
			ImageURL:      "https://images.unsplash.com/photo-1566073771259-6a8506099945?w=400",
		},
		{
			ID:            "hotel-003",
			Name:          fmt.Sprintf("Hampton Inn %s Downtown", city),
			Source:        "Expedia",
			SourceIcon:    "✈️",
			Address:       fmt.Sprintf("789 Commerce Way, %s, %s", city, state),
			PricePerNight: 125.00,
			TotalPrice:    375.00,
			Rating:        4.3,
			Amenities:     []string{"Free WiFi", "Gym", "Business Center", "Breakfast"},
			Availability:  true,
			Savings:       28.00,
			ImageURL:      "https://images.unsplash.com/photo-1551882547-ff40c63fe5fa?w=400",
		},
		{
			ID:            "hotel-004",
			Name:          "Holiday Inn Express " + city,
			Source:        "Kayak",
			SourceIcon:    "🛶",
			Address:       fmt.Sprintf("321 Airport Rd, %s, %s", city, state),
			PricePerNight: 109.00,
			TotalPrice:    327.00,
			Rating:        4.1,
			Amenities:     []string{"Free WiFi", "Pool", "Breakfast", "Shuttle"},
			Availability:  true,
			Savings:       35.00,
			ImageURL:      "https://images.unsplash.com/photo-1564501049412-61c2a3083791?w=400",
		},
		{
			ID:            "hotel-005",
			Name:          fmt.Sprintf("Marriott %s Waterfront", city),
			Source:        "Booking.com",
			SourceIcon:    "🅱️",
			Address:       fmt.Sprintf("555 Harbor Dr, %s, %s", city, state),
			PricePerNight: 189.00,
			TotalPrice:    567.00,
			Rating:        4.7,
			Amenities:     []string{"Free WiFi", "Pool", "Spa", "Restaurant", "Bar"},
			Availability:  true,
			Savings:       0,
			ImageURL:      "https://images.unsplash.com/photo-1542314831-068cd1dbfeeb?w=400",
		},
		{
			ID:            "hotel-006",
			Name:          "Best Western Plus " + city,
			Source:        "Hotels.com",
			SourceIcon:    "🏨",
			Address:       fmt.Sprintf("888 Industrial Pkwy, %s, %s", city, state),
			PricePerNight: 95.00,
			TotalPrice:    285.00,
			Rating:        4.0,
			Amenities:     []string{"Free WiFi", "Pool", "Pet Friendly", "Breakfast"},
			Availability:  true,
			Savings:       40.00,
			ImageURL:      "https://images.unsplash.com/photo-1520250497591-112f2f40a3f4?w=400",
		},
	}

	SortByTotalPrice(hotels)
	return hotels
}

func SortByTotalPrice(hotels []Hotel) {
	sort.SliceStable(hotels, func(i, j int) bool {
		return hotels[i].TotalPrice < hotels[j].TotalPrice
	})
}

// FindHotel returns the offer with the given id.
func FindHotel(hotels []Hotel, id string) (Hotel, bool) {
	for _, h := range hotels {
		if h.ID == id {
			return h, true
		}
	}
	return Hotel{}, false
}
