// Package types defines the shared domain types of the voxagent service:
// agent variants, structured errors, and request-scoped metadata carried
// through context.Context.
package types
