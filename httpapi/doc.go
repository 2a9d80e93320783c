// Package httpapi is the thin HTTP transport adapter for the library core.
//
// It owns exactly what the core does not: method/path mapping, CORS headers,
// JSON (de)serialization and the mapping of domain error kinds onto HTTP
// status codes. Routing is a table of (resource, verb) entries, each bound to
// one domain operation plus its request/response codec; the domain result
// flows back to the wire unchanged in shape.
package httpapi
