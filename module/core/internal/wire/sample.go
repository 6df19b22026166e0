// Package wire normalizes the inconsistent shapes tracking clients use to
// deliver a sample: OsmAnd-style flat query parameters, a flat JSON object,
// a nested location/coords object, or a query-string fragment under a "_"
// key. Extraction strategies are tried in a fixed priority order per logical
// field; the first non-empty value wins.
package wire

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// RawSample carries the extracted field values as strings, exactly as the
// client sent them. Parsing and validation happen in the service layer.
type RawSample struct {
	DeviceID  string
	Lat       string
	Lon       string
	Speed     string
	Bearing   string
	Altitude  string
	Battery   string
	Accuracy  string
	Timestamp string
}

var fieldAliases = map[string][]string{
	"id":        {"id", "deviceid", "device_id"},
	"lat":       {"lat", "latitude"},
	"lon":       {"lon", "longitude"},
	"speed":     {"speed"},
	"bearing":   {"bearing"},
	"altitude":  {"altitude"},
	"battery":   {"battery", "batt"},
	"accuracy":  {"accuracy"},
	"timestamp": {"timestamp"},
}

// strategy resolves an alias to a value within one wire shape.
type strategy struct {
	name   string
	lookup func(alias string) (string, bool)
}

// Decode builds the strategy chain for a request and extracts every logical
// field. Either query or body may be empty.
func Decode(query url.Values, body []byte) *RawSample {
	strategies := buildStrategies(query, body)

	return &RawSample{
		DeviceID:  extract(strategies, "id"),
		Lat:       extract(strategies, "lat"),
		Lon:       extract(strategies, "lon"),
		Speed:     extract(strategies, "speed"),
		Bearing:   extract(strategies, "bearing"),
		Altitude:  extract(strategies, "altitude"),
		Battery:   extract(strategies, "battery"),
		Accuracy:  extract(strategies, "accuracy"),
		Timestamp: extract(strategies, "timestamp"),
	}
}

func extract(strategies []strategy, field string) string {
	for _, s := range strategies {
		for _, alias := range fieldAliases[field] {
			if v, ok := s.lookup(alias); ok && v != "" {
				return v
			}
		}
	}
	return ""
}

func buildStrategies(query url.Values, body []byte) []strategy {
	strategies := []strategy{
		{name: "FlatQuery", lookup: queryLookup(query)},
	}

	root := decodeObject(body)
	if root == nil {
		return strategies
	}

	strategies = append(strategies, strategy{name: "FlatJson", lookup: objectLookup(root)})

	location, _ := root["location"].(map[string]interface{})
	if location != nil {
		strategies = append(strategies, strategy{name: "NestedLocation", lookup: objectLookup(location)})

		if coords, ok := location["coords"].(map[string]interface{}); ok {
			strategies = append(strategies, strategy{name: "NestedCoords", lookup: objectLookup(coords)})
		}
	}

	if fragment := templateFragment(root, location); fragment != nil {
		strategies = append(strategies, strategy{name: "TemplateFragment", lookup: queryLookup(fragment)})
	}

	return strategies
}

func queryLookup(values url.Values) func(string) (string, bool) {
	return func(alias string) (string, bool) {
		if values == nil {
			return "", false
		}
		v := values.Get(alias)
		return v, v != ""
	}
}

func objectLookup(obj map[string]interface{}) func(string) (string, bool) {
	return func(alias string) (string, bool) {
		v, ok := obj[alias]
		if !ok {
			return "", false
		}
		return stringify(v)
	}
}

// decodeObject parses the body as a JSON object, keeping numbers verbatim so
// a numeric device id or a millisecond timestamp survives unmangled.
func decodeObject(body []byte) map[string]interface{} {
	if len(body) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root map[string]interface{}
	if err := dec.Decode(&root); err != nil {
		return nil
	}
	return root
}

// templateFragment finds a "?id=X&lat=Y" style string under location._ or a
// top-level _ key and parses it as a query string.
func templateFragment(root, location map[string]interface{}) url.Values {
	var raw string
	if location != nil {
		if s, ok := location["_"].(string); ok {
			raw = s
		}
	}
	if raw == "" {
		if s, ok := root["_"].(string); ok {
			raw = s
		}
	}
	if raw == "" {
		return nil
	}

	trimmed := raw
	if trimmed[0] == '?' {
		trimmed = trimmed[1:]
	}
	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil
	}
	return values
}

func stringify(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Timestamps below earliestRecordedAt or more than a day ahead of the server
// clock are treated as device clock garbage and replaced with receipt time.
var earliestRecordedAt = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// msCutover splits numeric timestamps into milliseconds vs seconds. The
// boundary value itself is treated as seconds; observed client payloads have
// not pinned this down, so the heuristic is kept as-is.
const msCutover = 1_000_000_000_000

var calendarLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveTimestamp turns a client-supplied timestamp into the sample's
// recordedAt. Numeric values are Unix time, milliseconds when above the
// cutover. Anything unparseable or outside the accepted range falls back to
// now; the fallback never produces an out-of-range value.
func ResolveTimestamp(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		var t time.Time
		if n > msCutover {
			t = time.UnixMilli(n)
		} else {
			t = time.Unix(n, 0)
		}
		if inRecordedRange(t, now) {
			return t
		}
		return now
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		t := time.Unix(int64(f), 0)
		if inRecordedRange(t, now) {
			return t
		}
		return now
	}

	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if inRecordedRange(t, now) {
				return t
			}
			return now
		}
	}

	return now
}

func inRecordedRange(t, now time.Time) bool {
	return !t.Before(earliestRecordedAt) && !t.After(now.Add(24*time.Hour))
}
