// Package domain models public crime-incident reports and the rules that
// turn them into the canonical incident record consumed by the map and
// dashboard front end.
//
// # Input
//
// Sources are loosely structured: network feeds send JSON objects whose
// coordinates and severities may be numbers or strings, manual imports are
// CSV files, and blotter pages are HTML tables. All of them are mapped onto
// [RawIncident], which tolerates any subset of fields:
//
//	id, type|crime_type, date|incident_date, latitude|lat, longitude|lng,
//	address|location, description|details, status, severity,
//	weapon, injury, value
//
// "details" is free text in newer feeds and an object of severity signals
// ({"weapon": true, "injury": false, "value": 7500}) in older ones.
//
// # Canonical record
//
// [Incident] serializes to exactly:
//
//	{"id", "type", "date", "location": {"lat", "lng"}, "address",
//	 "description", "status", "severity"}
//
// type is one of [CrimeTypes], date is RFC 3339 in UTC, severity is 1–5.
//
// # Normalization rules
//
// Category: free text is folded (lower case, "_" and "-" to spaces) and
// matched by substring against an ordered synonym table; the first entry
// contained in the input wins, nothing matching yields OTHER.
//
// Severity: a base value per type, plus one each for a weapon (flag or the
// words weapon/gun/armed), an injury (flag or injury/injured/hurt) and a
// monetary value above 5000, clamped to 1–5. A non-zero severity supplied by
// the source takes precedence and is clamped.
//
//	ASSAULT, VEHICLE_THEFT               5
//	BURGLARY, DOMESTIC                   4
//	DRUG_OFFENSE, THEFT, FRAUD, DUI      3
//	VANDALISM, OTHER                     2
//
// Address: "<number> <street>" is redacted to the hundred block
// ("123 Main St" -> "100 Block Main St"); other addresses are labelled
// with the jurisdiction name unless they already mention it.
//
// Jurisdiction: planar distance from the configured center with 111 km per
// degree and cos(latitude) longitude scaling; NaN coordinates are outside.
//
// # Coordinates of manual entries
//
// CSV and table rows without coordinates are geocoded. Without a real
// provider, [SimulatedGeocoder] places them pseudo-randomly near the center
// of the jurisdiction. Those coordinates are an approximation, never a
// geocode: such incidents carry GeoSource "simulated" in process, and the
// pipeline logs and counts them.
//
// # ID generation
//
// Records without an id get a deterministic one: a SHA-256 of the raw
// fields prefixed with "CSV" for tabular rows or the jurisdiction prefix
// otherwise. Unchanged input keeps its ids across runs. See
// [Transformer.Transform].
package domain
