// Package observability provides structured logging and metrics for the
// inventory API.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - Request-scoped loggers carrying the chi request ID
//   - Prometheus counters for authentication and token verification outcomes
package observability
