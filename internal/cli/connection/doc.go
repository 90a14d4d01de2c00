// Package connection talks to an fxgallery server over HTTP or HTTPS.
//
// Responses use the server envelope {code, message, request_id, timestamp,
// data}. ParseResponse unwraps data on success and turns error envelopes
// into *APIError values.
package connection
