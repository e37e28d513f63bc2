// Package timezone provides timezone utilities for the application.
//
// Usage:
//
//	timezone.Init(cfg.App.Timezone)          // once, from main
//	now := timezone.Now()                    // current time in app timezone
//	local := timezone.ToAppTime(t)          // stored time in app timezone
//
// The timezone is configured via the APP_TIMEZONE environment variable.
// Use standard IANA timezone database names for reliable cross-platform compatibility.
package timezone
