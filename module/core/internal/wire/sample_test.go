package wire

import (
	"net/url"
	"testing"
	"time"
)

func TestDecode_FlatQuery(t *testing.T) {
	q := url.Values{}
	q.Set("id", "DEV-1")
	q.Set("lat", "44.7722")
	q.Set("lon", "17.1910")
	q.Set("speed", "62.5")
	q.Set("batt", "87")
	q.Set("timestamp", "1700000000")

	s := Decode(q, nil)

	if s.DeviceID != "DEV-1" {
		t.Errorf("expected DEV-1, got %s", s.DeviceID)
	}
	if s.Lat != "44.7722" || s.Lon != "17.1910" {
		t.Errorf("unexpected coordinates: %s %s", s.Lat, s.Lon)
	}
	if s.Speed != "62.5" {
		t.Errorf("expected 62.5, got %s", s.Speed)
	}
	if s.Battery != "87" {
		t.Errorf("expected batt alias to resolve, got %s", s.Battery)
	}
	if s.Timestamp != "1700000000" {
		t.Errorf("expected 1700000000, got %s", s.Timestamp)
	}
}

func TestDecode_QueryAliases(t *testing.T) {
	q := url.Values{}
	q.Set("device_id", "DEV-2")
	q.Set("latitude", "43.85")
	q.Set("longitude", "18.41")

	s := Decode(q, nil)

	if s.DeviceID != "DEV-2" {
		t.Errorf("expected DEV-2, got %s", s.DeviceID)
	}
	if s.Lat != "43.85" || s.Lon != "18.41" {
		t.Errorf("unexpected coordinates: %s %s", s.Lat, s.Lon)
	}
}

func TestDecode_FlatJSON(t *testing.T) {
	body := []byte(`{"deviceid":"DEV-3","lat":44.7722,"lon":17.191,"battery":54,"timestamp":1700000000000}`)

	s := Decode(nil, body)

	if s.DeviceID != "DEV-3" {
		t.Errorf("expected DEV-3, got %s", s.DeviceID)
	}
	if s.Lat != "44.7722" {
		t.Errorf("expected 44.7722, got %s", s.Lat)
	}
	if s.Lon != "17.191" {
		t.Errorf("expected 17.191, got %s", s.Lon)
	}
	if s.Battery != "54" {
		t.Errorf("expected 54, got %s", s.Battery)
	}
	if s.Timestamp != "1700000000000" {
		t.Errorf("expected millisecond timestamp kept verbatim, got %s", s.Timestamp)
	}
}

func TestDecode_NestedLocation(t *testing.T) {
	body := []byte(`{"device_id":"DEV-4","location":{"latitude":43.8563,"longitude":18.4131,"speed":40}}`)

	s := Decode(nil, body)

	if s.DeviceID != "DEV-4" {
		t.Errorf("expected DEV-4, got %s", s.DeviceID)
	}
	if s.Lat != "43.8563" || s.Lon != "18.4131" {
		t.Errorf("unexpected coordinates: %s %s", s.Lat, s.Lon)
	}
	if s.Speed != "40" {
		t.Errorf("expected 40, got %s", s.Speed)
	}
}

func TestDecode_NestedCoords(t *testing.T) {
	body := []byte(`{"id":"DEV-5","location":{"coords":{"latitude":-6.2088,"longitude":106.8456,"accuracy":12}}}`)

	s := Decode(nil, body)

	if s.Lat != "-6.2088" || s.Lon != "106.8456" {
		t.Errorf("unexpected coordinates: %s %s", s.Lat, s.Lon)
	}
	if s.Accuracy != "12" {
		t.Errorf("expected 12, got %s", s.Accuracy)
	}
}

func TestDecode_TemplateFragment(t *testing.T) {
	body := []byte(`{"location":{"_":"?id=DEV-6&lat=44.1&lon=17.2&speed=55"}}`)

	s := Decode(nil, body)

	if s.DeviceID != "DEV-6" {
		t.Errorf("expected DEV-6, got %s", s.DeviceID)
	}
	if s.Lat != "44.1" || s.Lon != "17.2" {
		t.Errorf("unexpected coordinates: %s %s", s.Lat, s.Lon)
	}
	if s.Speed != "55" {
		t.Errorf("expected 55, got %s", s.Speed)
	}
}

func TestDecode_QueryWinsOverBody(t *testing.T) {
	q := url.Values{}
	q.Set("id", "FROM-QUERY")
	body := []byte(`{"id":"FROM-BODY","lat":1,"lon":2}`)

	s := Decode(q, body)

	if s.DeviceID != "FROM-QUERY" {
		t.Errorf("expected FROM-QUERY, got %s", s.DeviceID)
	}
	if s.Lat != "1" {
		t.Errorf("expected body to fill missing fields, got %s", s.Lat)
	}
}

func TestDecode_InvalidBody(t *testing.T) {
	s := Decode(nil, []byte("not json"))
	if s.DeviceID != "" || s.Lat != "" {
		t.Errorf("expected empty sample, got %+v", s)
	}
}

func TestResolveTimestamp_SecondsAndMillisAgree(t *testing.T) {
	now := time.Date(2023, time.November, 20, 12, 0, 0, 0, time.UTC)

	sec := ResolveTimestamp("1700000000", now)
	ms := ResolveTimestamp("1700000000000", now)

	if !sec.Equal(ms) {
		t.Errorf("seconds and milliseconds should resolve to the same instant: %v vs %v", sec, ms)
	}
	if sec.Unix() != 1700000000 {
		t.Errorf("expected 1700000000, got %d", sec.Unix())
	}
}

func TestResolveTimestamp_OutOfRangeFallsBack(t *testing.T) {
	now := time.Date(2023, time.November, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"far future", "999999999999999"},
		{"before 2020", "1262304000"}, // 2010-01-01
		{"garbage", "not-a-time"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTimestamp(tt.raw, now)
			if !got.Equal(now) {
				t.Errorf("expected fallback to now, got %v", got)
			}
		})
	}
}

func TestResolveTimestamp_Calendar(t *testing.T) {
	now := time.Date(2023, time.November, 20, 12, 0, 0, 0, time.UTC)

	got := ResolveTimestamp("2023-11-14T22:13:20Z", now)
	if got.Unix() != 1700000000 {
		t.Errorf("expected 1700000000, got %d", got.Unix())
	}

	got = ResolveTimestamp("2035-01-01T00:00:00Z", now)
	if !got.Equal(now) {
		t.Errorf("expected out-of-range calendar date to fall back, got %v", got)
	}
}

func TestResolveTimestamp_NearFutureAccepted(t *testing.T) {
	now := time.Date(2023, time.November, 20, 12, 0, 0, 0, time.UTC)
	ahead := now.Add(time.Hour)

	got := ResolveTimestamp(ahead.Format(time.RFC3339), now)
	if !got.Equal(ahead) {
		t.Errorf("expected %v, got %v", ahead, got)
	}
}
