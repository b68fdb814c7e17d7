// Package client contains the client-side boundary to the QuickFlip backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): user
//     bootstrap, product listing, image enrichment, status and field
//     updates, and deletion.
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient). Every price
//     field read from the wire is normalised with pricing.CoercePrice, since
//     the backend sends prices either as numbers or as decimal strings.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError whose message is taken from
// the {"error": "..."} body, falling back to "HTTP <status>". Transport
// failures wrap common.ErrUnavailable. The package does not retry; every
// failure is terminal for that call.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
