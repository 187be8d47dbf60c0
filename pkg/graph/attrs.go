package graph

import (
	"math"
	"strconv"
)

// NodeAttrsFromMap converts a loosely typed attribute mapping into NodeAttrs.
// Recognised keys: name, city, country, iata/code, icao, lat, lon. Anything
// else lands in Extra. Coordinates count only when both are finite numbers.
func NodeAttrsFromMap(m map[string]any) NodeAttrs {
	var attrs NodeAttrs
	var lat, lon float64
	var hasLat, hasLon bool

	for k, v := range m {
		switch k {
		case "name":
			attrs.Name = stringOf(v)
		case "city":
			attrs.City = stringOf(v)
		case "country":
			attrs.Country = stringOf(v)
		case "iata", "code":
			attrs.Code = stringOf(v)
		case "icao":
			attrs.ICAO = stringOf(v)
		case "lat":
			lat, hasLat = floatOf(v)
		case "lon":
			lon, hasLon = floatOf(v)
		default:
			if attrs.Extra == nil {
				attrs.Extra = make(map[string]any)
			}
			attrs.Extra[k] = v
		}
	}

	if hasLat && hasLon {
		attrs.Lat, attrs.Lon, attrs.HasCoords = lat, lon, true
	}
	return attrs
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func floatOf(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
