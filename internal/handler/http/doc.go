// Package http implements the REST transport of the sync server.
//
// Routes:
//
//	GET  /api/version               server version, no auth
//	GET  /api/sync/{collection}     snapshot of one collection
//	POST /api/sync/{collection}     push of pending changes
//
// Sync routes require a bearer JWT. When a hash key is configured, request
// bodies must carry a matching HashSHA256 header and responses are signed
// with the same key.
package http
