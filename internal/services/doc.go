// Package services defines shared plumbing consumed by the providers, the
// checker, and the notifiers.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, provider names, and correlation
//     identifiers for logging.
//   - Sentinel error markers plus the Wrap helper so callers can classify
//     failures with errors.Is.
//   - Typed fetch errors that keep "the page could not be retrieved" distinct
//     from "the page had nothing on it".
package services
