// Package domain turns weather API readings into the text returned by the
// weather tools.
//
// # Providers
//
// Two upstream APIs are supported:
//
//	OpenWeatherMap (key-based, metric units):
//	  /weather   current observation for a city, classified locally.
//	  /forecast  3-hourly forecast for a coordinate pair.
//
//	National Weather Service, api.weather.gov (no key):
//	  /alerts/active/area/{state}  alerts already classified by NWS.
//	  /points/{lat},{lon}          resolves a coordinate to its gridpoint
//	                               forecast URL, which is then fetched.
//
// # Alert Classification
//
// OpenWeatherMap does not publish alerts on the free tier, so an observation
// is classified with a heuristic:
//
//	Temperature: > 35°C  Extreme Heat
//	             < 0°C   Freezing Conditions
//	Keywords (case-insensitive, condition name or description):
//	             thunderstorm  Thunderstorm
//	             tornado       Tornado
//	             hurricane     Hurricane
//	             snow          Heavy Snow
//
// Both thresholds are strict, so exactly 35 and exactly 0 raise nothing.
// An observation with no labels produces no alert.
//
// # Absent Values
//
// Numeric readings are [encoding/json.Number] pointers holding the literal
// the API sent, so 36.0 renders as "36.0" and 36 as "36". A reading the API
// omitted is nil and is rendered with Go's default formatting for an absent
// value ("<nil>"); the formatters do not substitute placeholders for numbers.
//
// Text fields with a fallback ("Unknown", "No description available") are
// string pointers. The fallback applies only when the field is absent or
// null; an empty string is rendered as sent.
//
// # Output Shape
//
// Every rendered block starts and ends with a newline and multiple blocks are
// joined with [Separator], so a tool response reads as a list of cards.
package domain
