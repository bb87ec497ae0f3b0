// Package catalog decodes and encodes the message payloads of the BMV feed.
//
// Responsibilities:
//   - Dispatch a frame payload to its decoder by type tag (producto 18 and 40)
//   - Enforce exact payload lengths per message type
//   - Validate fields against numeric rules and fixed code catalogs
//   - Encode records back to their wire payloads
//
// Producto 18 enumerations are enforced: a value outside its catalog
// rejects the frame. Producto 40 enumerations are advisory: unknown codes
// are logged and counted and the record is still produced.
package catalog
