// Package model defines the decoded record types of the BMV market-data feed.
//
// Every record embeds an Envelope (key, processing timestamp, feed timestamp
// and type tag) followed by its type-specific fields. JSON field names match
// the published camelCase names of the feed documentation.
//
// Conventions:
//   - Prices: codec.Price (exact decimal)
//   - Feed times: exchange local time (America/Mexico_City)
//   - Message is a closed set; switch on Type() to dispatch
package model
