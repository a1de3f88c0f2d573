// Package records persists the two session records of the client, the auth
// credential and the user profile, in the local SQLite database.
//
// SQLiteRepository is plain key/value storage over the "records" table.
// RecordStore adds the typed session view on top of it: JSON encoding of the
// profile, absent-record semantics and *StorageError wrapping. Callers that
// need both records consistent must sequence the calls and compensate
// themselves; the store never spans a transaction across keys.
package records
