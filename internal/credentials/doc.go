// Package credentials persists the session credential across process restarts.
//
// A [Store] sits in front of a pluggable [Backend]: a plain-text slot file ([FileBackend]) or a
// row in the local database ([SlotBackend]). Every store operation is best-effort. When the
// backend fails the store logs a warning and keeps the credential in memory only until the
// process exits, so callers never see storage errors.
package credentials
