// Package core holds the supplier database operations shared by the web
// server and the CLI. It has no transport dependencies.
//
// # Datasets and records
//
// A dataset (a "server file" in the UI) is a named list of supplier
// records. [Service] creates, renames and deletes datasets, and adds,
// edits, searches and deletes records. Supplier and Product are required
// on every record; destructive operations need an explicit confirmation.
//
// # Imports
//
// Importing a spreadsheet is a three-step conversation:
//
//  1. [Service.BeginImport] parses the upload, normalizes headers and infers
//     a column mapping from the alias table. The result is held in an
//     [ImportSession] under a random id.
//  2. [Service.PreviewImport] applies an optional user override and returns
//     the first rows of the standardized records, plus counts and warnings.
//  3. [Service.CommitImport] replaces the records of an existing dataset or
//     fills a new one, then ends the session.
//
// Sessions that are not touched for the configured TTL are removed by
// [Service.StartSessionSweeper]. Parsing and committing share an
// [ImportLimiter] so a burst of uploads cannot exhaust memory.
//
// # Error handling
//
// [MapError] turns any error returned here into a [UserMessage] with a
// support code (MAP, FILE, DS, REC, IMP, UPL, DB, ERR000).
package core
