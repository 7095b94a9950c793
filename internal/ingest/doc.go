// Package ingest loads bulk redirect rules from CSV or JSON rows.
//
// Each row is validated, its path normalised, and checked against the store
// for an existing rule with the same path, host and version before it is
// inserted. Rows are handled one at a time so later rows see the inserts of
// earlier ones; bad rows are reported as skips and never abort the batch.
package ingest
