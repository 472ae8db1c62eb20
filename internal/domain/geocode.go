package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding resolves coordinates for an incident whose GeoSource is
// pending. The real geocoder is tried first when present; if it is absent,
// fails or finds nothing, the fallback approximates the location and the
// incident is marked simulated. Incidents in any other state are returned
// unchanged.
func EnrichWithGeocoding(ctx context.Context, inc Incident, address, region string, geocoder, fallback Geocoder, logger *slog.Logger) Incident {
	if inc.GeoSource != GeoSourcePending {
		return inc
	}

	if geocoder != nil {
		result, err := geocoder.ForwardGeocode(ctx, address, region)
		switch {
		case err != nil:
			logger.Warn("forward geocoding failed",
				"incident_id", inc.ID,
				"source", inc.Source,
				"error", err,
			)
		case result.Found():
			inc.Location = Point{Lat: result.Lat, Lng: result.Lng}
			inc.GeoSource = GeoSourceGeocoded
			return inc
		default:
			logger.Debug("geocoder found no match", "incident_id", inc.ID, "source", inc.Source)
		}
	}

	if fallback == nil {
		inc.Location = NoPoint
		inc.GeoSource = GeoSourceMissing
		return inc
	}

	result, err := fallback.ForwardGeocode(ctx, address, region)
	if err != nil || !result.Found() {
		inc.Location = NoPoint
		inc.GeoSource = GeoSourceMissing
		return inc
	}

	logger.Warn("using simulated coordinates",
		"incident_id", inc.ID,
		"source", inc.Source,
		"lat", result.Lat,
		"lng", result.Lng,
	)
	inc.Location = Point{Lat: result.Lat, Lng: result.Lng}
	inc.GeoSource = GeoSourceSimulated
	return inc
}
