package timezone

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var appLocation atomic.Pointer[time.Location]

// Init sets the application timezone. An empty or unknown name falls back to UTC.
func Init(name string) {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		appLocation.Store(time.UTC)

		return
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Asia/Jakarta', 'UTC', 'America/New_York'")
		appLocation.Store(time.UTC)

		return
	}

	appLocation.Store(loc)
	log.Info().
		Str("timezone", name).
		Str("location", loc.String()).
		Msg("Application timezone initialized")
}

// GetLocation returns the current application timezone location, UTC until Init runs.
func GetLocation() *time.Location {
	if loc := appLocation.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

// Now returns the current time in the application timezone, truncated to the
// microsecond precision PostgreSQL keeps for timestamptz.
func Now() time.Time {
	return time.Now().In(GetLocation()).Truncate(time.Microsecond)
}

// ToAppTime converts a time to the application timezone
func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}
