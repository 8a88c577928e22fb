package model

import "github.com/shopspring/decimal"

// DeliveryFeeTypeArea marks configurations that charge per delivery area.
const DeliveryFeeTypeArea = "area"

// DeliveryArea is a zone within a city with a fixed delivery fee.
type DeliveryArea struct {
	ID     int64           `json:"id"`
	CityID int64           `json:"city_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// City is a delivery city with its areas.
type City struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Areas []DeliveryArea `json:"areas"`
}

// StoreConfig is the backend /api/config payload.
type StoreConfig struct {
	Deliveryman     bool            `json:"deliveryman"`
	DeliveryFeeType string          `json:"delivery_fee_type"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	Currency        string          `json:"currency,omitempty"`
	PaymentMethods  []PaymentMethod `json:"payment_methods,omitempty"`
	Cities          []City          `json:"cities"`
}

// AreaBased reports whether checkout must collect a delivery area.
func (c StoreConfig) AreaBased() bool {
	return c.Deliveryman && c.DeliveryFeeType == DeliveryFeeTypeArea
}

// AreasForCity returns the delivery areas of the given city.
func (c StoreConfig) AreasForCity(cityID int64) []DeliveryArea {
	var areas []DeliveryArea
	for _, city := range c.Cities {
		for _, area := range city.Areas {
			// Areas may omit city_id when nested under their city.
			if area.CityID == 0 {
				area.CityID = city.ID
			}
			if area.CityID == cityID {
				areas = append(areas, area)
			}
		}
	}
	return areas
}

// FindArea looks up an area by id across all cities.
func (c StoreConfig) FindArea(id int64) (DeliveryArea, bool) {
	for _, city := range c.Cities {
		for _, area := range city.Areas {
			if area.ID != id {
				continue
			}
			if area.CityID == 0 {
				area.CityID = city.ID
			}
			return area, true
		}
	}
	return DeliveryArea{}, false
}
