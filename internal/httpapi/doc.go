// Package httpapi exposes a persist.Service over HTTP and provides the
// matching client.
//
// Endpoints:
//
//	PUT /games/{game}/batches/{count}   create or update one batch
//	GET /games/{game}/batches?from=N    batches with count >= N, ascending
//
// Bodies are canonical JSON or msgpack, chosen by Content-Type on requests
// and Accept on responses. The server validates every incoming document
// against persist.Schema before storing it.
package httpapi
