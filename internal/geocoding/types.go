package geocoding

// Address is the normalized result of a reverse geocode. Street may be a
// synthetic "Near <place>" placeholder when no street-level component could
// be resolved; placeholder addresses must never be persisted as properties.
type Address struct {
	Street      string
	City        string
	State       string
	ZipCode     string
	County      string
	Accuracy    string // "rooftop", "street", or "place"
	Placeholder bool
}

// Suggestion is a forward-search candidate returned to callers in the order
// the upstream service ranked them.
type Suggestion struct {
	Label     string
	Street    string
	City      string
	State     string
	ZipCode   string
	Latitude  float64
	Longitude float64
}

// Building is a footprint feature carrying a house-number tag.
type Building struct {
	Street        string
	City          string
	State         string
	ZipCode       string
	Latitude      float64
	Longitude     float64
	DistanceMiles float64
	BuildingID    string
}

// Geocode accuracy labels persisted on properties.
const (
	AccuracyRooftop = "rooftop"
	AccuracyStreet  = "street"
	AccuracyPlace   = "place"
)

type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Building      string `json:"building"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Hamlet        string `json:"hamlet"`
	Village       string `json:"village"`
	Town          string `json:"town"`
	City          string `json:"city"`
	Municipality  string `json:"municipality"`
	County        string `json:"county"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
}

// nominatimResponse mirrors the relevant parts of the OSM payloads.
type nominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Name        string           `json:"name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
}
