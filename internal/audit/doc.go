// Package audit records control actions taken against the running host:
// parameter changes and layout edits made through the API, with the token
// subject that made them.
//
// Entries are stored in the audit_log table and listed newest first.
package audit
