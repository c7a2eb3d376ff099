// Package errs defines the error shapes the API returns to clients.
//
// Every handler error ends up either as an *HTTPError serialized to JSON
// by the global error handler, or as one of the guestbook error bodies
// written directly by the edit handler.
package errs
