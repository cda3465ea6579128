package placesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	placesBase = "https://places.googleapis.com/v1/"

	placesNearby       = "places:searchNearby"
	placesText         = "places:searchText"
	placesAutocomplete = "places:autocomplete"
	placesDetails      = "places/"

	apiKeyHeader = "X-Goog-Api-Key"

	errorBodyLimit = 4096
)

var defaultHTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}

// Client talks to the Places API with a static key. It keeps no state between
// calls and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrInvalidConfiguration
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    placesBase,
		httpClient: defaultHTTPClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func fieldsQuery(fields string) url.Values {
	q := url.Values{}
	q.Set("fields", fields)
	return q
}

// do sends one request and returns the raw body once it is known to hold a
// non-empty JSON value.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	urlStr := c.baseURL + path
	if len(query) > 0 {
		urlStr += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Method: method, Path: path, Err: err}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		content, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(content)),
		}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyResponse
	}

	var decoded interface{}
	if err := json.Unmarshal(content, &decoded); err != nil {
		return nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	if isEmptyValue(decoded) {
		return nil, ErrEmptyResponse
	}
	return content, nil
}

func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	case string:
		return t == ""
	}
	return false
}

func (c *Client) decode(method, path string, raw json.RawMessage, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	return nil
}

// parseLocation splits "<lat>,<lng>". Anything after the second component is
// ignored and the numbers are passed on as written.
func parseLocation(location string) (lat, lng string, err error) {
	parts := strings.Split(location, ",")
	if len(parts) < 2 {
		return "", "", invalidArgument("location %q is not in <lat>,<lng> form", location)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// NearbySearch returns the places within radius meters of location.
func (c *Client) NearbySearch(ctx context.Context, location string, radius int, params NearbyParams) ([]Place, error) {
	lat, lng, err := parseLocation(location)
	if err != nil {
		return nil, err
	}
	if !params.Fields.IsSet() {
		return nil, invalidArgument("nearby search requires a field mask")
	}

	body := make(map[string]interface{}, len(params.Options)+1)
	for k, v := range params.Options {
		if k == "fields" {
			continue
		}
		body[k] = v
	}
	body["locationRestriction"] = map[string]interface{}{
		"circle": map[string]interface{}{
			"center": map[string]interface{}{
				"latitude":  lat,
				"longitude": lng,
			},
			"radius": radius,
		},
	}

	raw, err := c.do(ctx, http.MethodPost, placesNearby, fieldsQuery(NormalizeFields(params.Fields, false)), body)
	if err != nil {
		return nil, err
	}
	var env placesEnvelope
	if err := c.decode(http.MethodPost, placesNearby, raw, &env); err != nil {
		return nil, err
	}
	return env.Places, nil
}

// GetPlace returns the details of a single place. Field names are bare here,
// so any "places." prefix is removed from the mask.
func (c *Client) GetPlace(ctx context.Context, placeID string, fields Fields) (Place, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, invalidArgument("place id is empty")
	}
	path := placesDetails + url.PathEscape(placeID)

	raw, err := c.do(ctx, http.MethodGet, path, fieldsQuery(NormalizeFields(fields, true)), nil)
	if err != nil {
		return nil, err
	}
	var place Place
	if err := c.decode(http.MethodGet, path, raw, &place); err != nil {
		return nil, err
	}
	return place, nil
}

func (c *Client) SearchText(ctx context.Context, query string, fields Fields) ([]Place, error) {
	body := map[string]interface{}{"textQuery": query}

	raw, err := c.do(ctx, http.MethodPost, placesText, fieldsQuery(NormalizeFields(fields, false)), body)
	if err != nil {
		return nil, err
	}
	var env placesEnvelope
	if err := c.decode(http.MethodPost, placesText, raw, &env); err != nil {
		return nil, err
	}
	return env.Places, nil
}

// Autocomplete returns predictions for a partially typed input. The input
// argument always wins over an "input" key in params.
func (c *Client) Autocomplete(ctx context.Context, input string, params map[string]interface{}) ([]Suggestion, error) {
	body := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["input"] = input

	raw, err := c.do(ctx, http.MethodPost, placesAutocomplete, nil, body)
	if err != nil {
		return nil, err
	}
	var env suggestionsEnvelope
	if err := c.decode(http.MethodPost, placesAutocomplete, raw, &env); err != nil {
		return nil, err
	}
	return env.Suggestions, nil
}
