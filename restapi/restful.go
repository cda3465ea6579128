package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jdevelop/placesmap/placesapi"
	"github.com/julienschmidt/httprouter"
	"github.com/phuslu/log"
)

// Places is the part of placesapi.Client the handlers use.
type Places interface {
	NearbySearch(ctx context.Context, location string, radius int, params placesapi.NearbyParams) ([]placesapi.Place, error)
	GetPlace(ctx context.Context, placeID string, fields placesapi.Fields) (placesapi.Place, error)
	SearchText(ctx context.Context, query string, fields placesapi.Fields) ([]placesapi.Place, error)
	Autocomplete(ctx context.Context, input string, params map[string]interface{}) ([]placesapi.Suggestion, error)
}

type Server struct {
	places Places
	logger *log.Logger
}

func NewServer(places Places, logger *log.Logger) *Server {
	return &Server{places: places, logger: logger}
}

// Router mounts every endpoint under prefix, which must end with "/".
func (s *Server) Router(prefix string) *httprouter.Router {
	svc := httprouter.New()
	svc.GET(prefix+"nearby", s.nearby)
	svc.GET(prefix+"place/:id", s.place)
	svc.GET(prefix+"search", s.search)
	svc.GET(prefix+"autocomplete", s.autocomplete)
	svc.GET(prefix+"export", s.export)
	return svc
}

// queryFields maps the optional fields parameter; without it the mask is absent.
func queryFields(r *http.Request) placesapi.Fields {
	q := r.URL.Query()
	if _, ok := q["fields"]; !ok {
		return placesapi.Fields{}
	}
	return placesapi.FieldString(q.Get("fields"))
}

func nearbyOptions(r *http.Request) map[string]interface{} {
	q := r.URL.Query()
	options := make(map[string]interface{})
	if types := q["type"]; len(types) > 0 {
		options["includedTypes"] = types
	}
	if limit := q.Get("max"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			options["maxResultCount"] = n
		}
	}
	return options
}

func parseRadius(r *http.Request) (int, error) {
	radius, err := strconv.Atoi(r.URL.Query().Get("radius"))
	if err != nil {
		return 0, errors.New("radius must be an integer number of meters")
	}
	return radius, nil
}

func (s *Server) nearby(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	radius, err := parseRadius(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	places, err := s.places.NearbySearch(r.Context(), r.URL.Query().Get("location"), radius, placesapi.NearbyParams{
		Fields:  queryFields(r),
		Options: nearbyOptions(r),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, places)
}

func (s *Server) place(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	place, err := s.places.GetPlace(r.Context(), ps.ByName("id"), queryFields(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, place)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "missing q query parameter", http.StatusBadRequest)
		return
	}
	places, err := s.places.SearchText(r.Context(), query, queryFields(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, places)
}

func (s *Server) autocomplete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	input := r.URL.Query().Get("input")
	if input == "" {
		http.Error(w, "missing input query parameter", http.StatusBadRequest)
		return
	}
	params := make(map[string]interface{})
	if types := r.URL.Query()["type"]; len(types) > 0 {
		params["includedPrimaryTypes"] = types
	}
	suggestions, err := s.places.Autocomplete(r.Context(), input, params)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, suggestions)
}

// export renders a text search, or a nearby search when location is given, as
// a KML attachment.
func (s *Server) export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		places []placesapi.Place
		err    error
	)
	if location := r.URL.Query().Get("location"); location != "" {
		radius, rerr := parseRadius(r)
		if rerr != nil {
			http.Error(w, rerr.Error(), http.StatusBadRequest)
			return
		}
		places, err = s.places.NearbySearch(r.Context(), location, radius, placesapi.NearbyParams{
			Fields:  placesapi.KMLFields,
			Options: nearbyOptions(r),
		})
	} else {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, "missing q or location query parameter", http.StatusBadRequest)
			return
		}
		places, err = s.places.SearchText(r.Context(), query, placesapi.KMLFields)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	k := placesapi.BuildKML(places)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Disposition", "attachment; filename=places-export.kml")
	w.Header().Add("Content-Type", "application/vnd.google-earth.kml+xml")
	if err := k.WriteIndent(w, "", "  "); err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("write kml")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, placesapi.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, placesapi.ErrEmptyResponse):
		return http.StatusNotFound
	case errors.Is(err, placesapi.ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("places request failed")
	msg := err.Error()
	if status == http.StatusBadGateway {
		msg = "places service unavailable"
	}
	http.Error(w, msg, status)
}
