package placesapi

// Place is a place object as decoded from the service. Its keys depend on the
// field mask of the request, so it is kept as a generic object with accessors
// for the attributes the rest of the module reads.
type Place map[string]interface{}

// Suggestion is one autocomplete prediction, either a placePrediction or a
// queryPrediction depending on the request.
type Suggestion map[string]interface{}

// NearbyParams carries the optional parts of a nearby search. Fields must be
// set, FieldList() with no names asks for every field. Options are copied into
// the request body verbatim.
type NearbyParams struct {
	Fields  Fields
	Options map[string]interface{}
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type placesEnvelope struct {
	Places []Place `json:"places"`
}

type suggestionsEnvelope struct {
	Suggestions []Suggestion `json:"suggestions"`
}

func (p Place) ID() string {
	return p.str("id")
}

// DisplayName returns displayName.text, or the bare name resource as a fallback.
func (p Place) DisplayName() string {
	if dn, ok := p["displayName"].(map[string]interface{}); ok {
		if text, ok := dn["text"].(string); ok {
			return text
		}
	}
	return p.str("name")
}

func (p Place) FormattedAddress() string {
	return p.str("formattedAddress")
}

func (p Place) PrimaryType() string {
	return p.str("primaryType")
}

// Location returns the coordinates of the place, ok is false when the
// response did not include them.
func (p Place) Location() (loc Location, ok bool) {
	raw, found := p["location"].(map[string]interface{})
	if !found {
		return Location{}, false
	}
	lat, latOK := raw["latitude"].(float64)
	lng, lngOK := raw["longitude"].(float64)
	if !latOK || !lngOK {
		return Location{}, false
	}
	return Location{Latitude: lat, Longitude: lng}, true
}

func (p Place) str(key string) string {
	s, _ := p[key].(string)
	return s
}
