// Package header defines the decision model header, the fact record that
// identification modules exchange with the orchestrator.
//
// A header carries three things the orchestrator relies on:
//   - Content identity (ID): SHA-256 with domain separation over a canonical
//     JSON form of the normalized fields. Sets deduplicate by it.
//   - A partial order (Compare): Less, Equal, Greater or Incomparable.
//   - A binary record form (msgpack) written by modules under the run
//     workspace and read back by the orchestrator.
//
// Normalization happens once, at construction or decode time: strings are NFC
// normalized and covered elements are sorted and deduplicated. Every other
// operation assumes a normalized header.
package header
