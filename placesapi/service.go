package placesapi

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/twpayne/go-kml"
)

const undefinedFolder = "Undefined"

// KMLFields is the mask a search needs for BuildKML to place every result.
var KMLFields = FieldList(
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.location",
	"places.primaryType",
)

// GroupByType maps a folder name to the places of that primary type. Places
// without a type land in "Undefined".
func GroupByType(places []Place) map[string][]Place {
	groups := make(map[string][]Place)
	for _, p := range places {
		name := p.PrimaryType()
		if name == "" {
			name = undefinedFolder
		}
		groups[name] = append(groups[name], p)
	}
	return groups
}

// BuildKML renders places as a KML document with one folder per primary type,
// sorted by type with "Undefined" last.
// Places the response gave no location for are skipped.
func BuildKML(places []Place) *kml.CompoundElement {
	groups := GroupByType(places)

	names := make([]string, 0, len(groups))
	for name := range groups {
		if name != undefinedFolder {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := groups[undefinedFolder]; ok {
		names = append(names, undefinedFolder)
	}

	k := kml.KML()
	d := kml.Document()

	for _, name := range names {
		folder := kml.Folder(kml.Name(folderTitle(name)))
		added := 0
		for _, item := range groups[name] {
			loc, ok := item.Location()
			if !ok {
				continue
			}
			folder.Add(kml.Placemark(
				kml.Name(item.DisplayName()),
				kml.Description(item.FormattedAddress()),
				kml.Point(
					kml.Coordinates(kml.Coordinate{Lon: loc.Longitude, Lat: loc.Latitude}),
				),
			))
			added++
		}
		if added > 0 {
			d.Add(folder)
		}
	}

	k.Add(d)
	return k
}

// SearchTextKML runs a text search with KMLFields and renders the result.
func (c *Client) SearchTextKML(ctx context.Context, query string) (*kml.CompoundElement, error) {
	places, err := c.SearchText(ctx, query, KMLFields)
	if err != nil {
		return nil, err
	}
	return BuildKML(places), nil
}

// NearbyKML runs a nearby search with KMLFields and renders the result.
func (c *Client) NearbyKML(ctx context.Context, location string, radius int, options map[string]interface{}) (*kml.CompoundElement, error) {
	places, err := c.NearbySearch(ctx, location, radius, NearbyParams{Fields: KMLFields, Options: options})
	if err != nil {
		return nil, err
	}
	return BuildKML(places), nil
}

// folderTitle turns "coffee_shop" into "Coffee shop".
func folderTitle(primaryType string) string {
	if primaryType == undefinedFolder {
		return primaryType
	}
	s := strings.ReplaceAll(primaryType, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
