package skyscanner

// searchFlightEnvelope is only used to report why "data" is missing.
type searchFlightEnvelope struct {
	Status  *bool `json:"status"`
	Message any   `json:"message"`
}

type Flight struct {
	ID            string  `json:"id"`
	Price         Price   `json:"price"`
	Legs          []Leg   `json:"legs"`
	TotalDuration float64 `json:"totalDuration"`
}

type Price struct {
	Amount float64 `json:"amount"`
}

type Leg struct {
	Origin      Place     `json:"origin"`
	Destination Place     `json:"destination"`
	Departure   string    `json:"departure"`
	Arrival     string    `json:"arrival"`
	Carriers    []Carrier `json:"carriers"`
}

type Place struct {
	Name        string `json:"name"`
	DisplayCode string `json:"display_code"`
}

type Carrier struct {
	Name string `json:"name"`
}
