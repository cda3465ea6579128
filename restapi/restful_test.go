package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jdevelop/placesmap/placesapi"
	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlaces struct {
	location    string
	radius      int
	nearby      placesapi.NearbyParams
	placeID     string
	fields      placesapi.Fields
	query       string
	input       string
	inputParams map[string]interface{}

	places []placesapi.Place
	err    error
}

func (f *fakePlaces) NearbySearch(_ context.Context, location string, radius int, params placesapi.NearbyParams) ([]placesapi.Place, error) {
	f.location, f.radius, f.nearby = location, radius, params
	return f.places, f.err
}

func (f *fakePlaces) GetPlace(_ context.Context, placeID string, fields placesapi.Fields) (placesapi.Place, error) {
	f.placeID, f.fields = placeID, fields
	if f.err != nil {
		return nil, f.err
	}
	return f.places[0], nil
}

func (f *fakePlaces) SearchText(_ context.Context, query string, fields placesapi.Fields) ([]placesapi.Place, error) {
	f.query, f.fields = query, fields
	return f.places, f.err
}

func (f *fakePlaces) Autocomplete(_ context.Context, input string, params map[string]interface{}) ([]placesapi.Suggestion, error) {
	f.input, f.inputParams = input, params
	if f.err != nil {
		return nil, f.err
	}
	return []placesapi.Suggestion{{"queryPrediction": map[string]interface{}{"text": input}}}, nil
}

func samplePlaces() []placesapi.Place {
	return []placesapi.Place{{
		"id":          "p1",
		"displayName": map[string]interface{}{"text": "Cafe One"},
		"primaryType": "cafe",
		"location":    map[string]interface{}{"latitude": 1.5, "longitude": 2.5},
	}}
}

func serve(t *testing.T, places Places, target string) *httptest.ResponseRecorder {
	t.Helper()
	logger := &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
	router := NewServer(places, logger).Router("/api/")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNearbyPassesParameters(t *testing.T) {
	fake := &fakePlaces{places: samplePlaces()}
	rec := serve(t, fake, "/api/nearby?location=37.7,-122.4&radius=500&fields=places.id,%20places.location&type=cafe&max=3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "37.7,-122.4", fake.location)
	assert.Equal(t, 500, fake.radius)
	assert.Equal(t, "places.id,places.location", placesapi.NormalizeFields(fake.nearby.Fields, false))
	assert.Equal(t, []string{"cafe"}, fake.nearby.Options["includedTypes"])
	assert.Equal(t, 3, fake.nearby.Options["maxResultCount"])

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0]["id"])
}

func TestNearbyRejectsBadRadius(t *testing.T) {
	rec := serve(t, &fakePlaces{}, "/api/nearby?location=1,2&radius=far")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceUsesRouteID(t *testing.T) {
	fake := &fakePlaces{places: samplePlaces()}
	rec := serve(t, fake, "/api/place/XYZ")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "XYZ", fake.placeID)
	assert.False(t, fake.fields.IsSet())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearchRequiresQuery(t *testing.T) {
	fake := &fakePlaces{}
	rec := serve(t, fake, "/api/search?q=%20")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fake.query)

	fake.places = samplePlaces()
	rec = serve(t, fake, "/api/search?q=pizza")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pizza", fake.query)
}

func TestAutocompleteForwardsTypes(t *testing.T) {
	fake := &fakePlaces{}
	rec := serve(t, fake, "/api/autocomplete?input=piz&type=restaurant")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "piz", fake.input)
	assert.Equal(t, []string{"restaurant"}, fake.inputParams["includedPrimaryTypes"])
	assert.Contains(t, rec.Body.String(), "queryPrediction")
}

func TestExportWritesKML(t *testing.T) {
	fake := &fakePlaces{places: samplePlaces()}
	rec := serve(t, fake, "/api/export?q=coffee")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.google-earth.kml+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "places-export.kml")
	assert.Contains(t, rec.Body.String(), "<name>Cafe One</name>")
	assert.Equal(t, placesapi.NormalizeFields(placesapi.KMLFields, false), placesapi.NormalizeFields(fake.fields, false))

	rec = serve(t, fake, "/api/export?location=1,2&radius=50")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, fake.radius)

	rec = serve(t, fake, "/api/export")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", placesapi.ErrInvalidArgument), http.StatusBadRequest},
		{placesapi.ErrEmptyResponse, http.StatusNotFound},
		{&placesapi.TransportError{Method: "POST", Path: "places:searchText", StatusCode: 500}, http.StatusBadGateway},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(t, &fakePlaces{err: tt.err}, "/api/search?q=pizza")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
