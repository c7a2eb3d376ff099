// Package middleware holds the global and route-level echo middleware:
// request ids, request-scoped logging, Clerk authentication, New Relic
// tracing, rate limiting and the global error handler.
package middleware
