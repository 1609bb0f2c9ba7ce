// Package postgresengine implements the relational persistence core of the
// rental service on PostgreSQL.
//
// It combines three pieces:
//
//   - a fixed, hand-written schema description per entity (table name plus
//     ordered column list) from which aliased select expressions are derived,
//   - per-entity row mappers that reconstitute domain entities from a fetched
//     row under a column-alias prefix (two mappers run against the same row
//     for join-based composite fetches),
//   - a generic query engine that assembles parameterized SELECT statements
//     (optionally with one LEFT JOIN and a WHERE clause), applies pagination
//     and ordering, executes them through a database adapter, and streams
//     result rows lazily with guaranteed resource release.
//
// Entity repositories compose these pieces into the find/save/delete
// operations consumed by the service layer.
package postgresengine
