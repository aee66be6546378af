/*
Package config loads event logger settings from files and the environment.

# Sources

Settings are resolved in order, later sources winning:

 1. Default()
 2. a YAML (.yaml, .yml) or JSON (.json) file
 3. EVENTLOG_* environment variables

Load does all three and validates the result:

	s, err := config.Load("eventlog.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	logger := config.NewSlogLogger(s.Log, os.Stderr)
	reg, err := s.Registry()
	st, err := store.Open(ctx, s.StoreOptions())

# Environment

	EVENTLOG_LOG_LEVEL       debug | info | warn | error
	EVENTLOG_LOG_FORMAT      text | json
	EVENTLOG_METRICS         true | false
	EVENTLOG_TRACING         true | false
	EVENTLOG_STORE_DRIVER    memory | sqlite | postgres | pgx | redis
	EVENTLOG_STORE_DSN       path, connection string or redis:// URL
	EVENTLOG_STORE_STREAM    Redis stream key
	EVENTLOG_SEED_PATH       YAML event type catalog; empty uses the built-in one
	EVENTLOG_SEED_VERSION    semver constraint the catalog must satisfy
*/
package config
