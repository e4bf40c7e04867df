// Package tz maps instants and civil datetimes to UTC offsets.
//
// A [TimeZone] is either a fixed offset or a name resolved through a
// [Provider], the time zone database. Looking up the offset of an instant is
// never ambiguous, but resolving a civil datetime may find a [Gap], where the
// clocks skipped over the datetime, or a [Fold], where it occurred twice. A
// [Disambiguation] policy chooses among the [Candidates].
//
// Two providers are included: [LocationDB], backed by the IANA data of the Go
// runtime, and [TableDB], backed by synthetic transition tables.
package tz
