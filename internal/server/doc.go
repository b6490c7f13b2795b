// Package server exposes the analyzer over HTTP.
//
// The API is deliberately small:
//
//	POST /analyze   {"url": "..."}  -> 200 flat report JSON
//	GET  /healthz                   -> 200 {"status": "ok"}
//
// A missing url answers 400 and an analysis fault answers 500, both with an
// {"error": "..."} body. Every response carries an X-Request-ID header.
package server
