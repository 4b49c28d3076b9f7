// Package source provides connectors for the four upstream systems:
// issue tracker, meetings platform, documentation wiki, and team chat.
//
// Each connector shares a rate-limited HTTP client and exposes a lazy
// page-walking Iterator over core records for a date window. Non-2xx
// responses surface as *retry.HTTPError so the retry envelope can
// classify them; every page request runs under that envelope. The
// tracker and meetings connectors additionally serve the authoritative
// identity lookups used by the resolver.
package source
