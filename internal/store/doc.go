// Package store persists decision model headers in a run workspace.
//
// Layout under the run path:
//
//	identified/
//	  msgpack/   header*.msgpack  binary records, the canonical form
//	  json/      header*.json     human-readable mirror, never read back
//
// Recovery is best effort: unreadable or malformed records are skipped so a
// damaged file never blocks a resumed run. Writes go through a temporary file
// and a rename, so a concurrently scanning reader sees either nothing or a
// complete record.
package store
