package domain

import "strings"

// StationInfo is the static enrichment applied to personal-weather-station
// exports. The tabular feed carries no station identity of its own; it is
// recovered by matching a known-station token against the object key.
type StationInfo struct {
	Token     string // token embedded in upload keys, e.g. "LaMadeleine"
	ID        string
	Name      string
	City      string
	Software  string
	Latitude  float64
	Longitude float64
	Elevation float64
}

// KnownStations lists the personal weather stations whose exports the
// cooperative ingests. New stations are onboarded by adding an entry here.
var KnownStations = []StationInfo{
	{
		Token:     "LaMadeleine",
		ID:        "ILAMAD25",
		Name:      "La Madeleine",
		City:      "LaMadeleine",
		Software:  "EasyWeatherPro_V5.1.6",
		Latitude:  50.659,
		Longitude: 3.07,
		Elevation: 23,
	},
	{
		Token:     "Ichtegem",
		ID:        "IICHTE19",
		Name:      "WeerstationBS",
		City:      "Ichtegem",
		Software:  "EasyWeather_V1.6.6",
		Latitude:  51.092,
		Longitude: 2.999,
		Elevation: 15,
	},
}

// MatchStation identifies the station an uploaded object belongs to by
// searching the key for a known-station token. A miss means the object
// should be skipped with a warning; it is not fatal to the run.
func MatchStation(key string) (StationInfo, bool) {
	for _, s := range KnownStations {
		if strings.Contains(key, s.Token) {
			return s, true
		}
	}
	return StationInfo{}, false
}
