// Package market implements the instrument registry.
//
// The registry is a writer.Writer fed by the router. It keeps the latest
// producto 40 catalog record of every instrument, keyed by instrument
// number (TRAC number for ce records), and overlays the last trade price
// and daily statistics seen on producto 18. Consumers can look
// instruments up by number or by emisora/serie, and subscribe to
// change notifications.
package market
