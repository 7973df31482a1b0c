// Package errors implements a three-class error classification system for
// VitalStream: Transient (temporary, retryable), Invalid (bad input, do not
// retry), and Fatal (unrecoverable, stop processing).
//
// The classification drives handling decisions across the alerting pipeline:
//
//   - Transient: cache tier or rule store unreachable, timeouts. The caller
//     degrades to the next tier or drops the current call's contribution.
//   - Invalid: malformed rule definitions, unknown categories, bad condition
//     payloads. The offending rule or event is skipped and processing
//     continues; never retried.
//   - Fatal: configuration errors discovered at startup.
//
// Errors are wrapped with component context using the standard pattern:
//
//	return errors.WrapTransient(err, "TieredCache", "Get", "distributed lookup")
//
// which yields "TieredCache.Get: distributed lookup failed: <cause>" and
// carries the classification through errors.Is/errors.As chains.
package errors
