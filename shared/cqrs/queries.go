package cqrs

// ---------- User queries ----------

// GetUserQuery aggregates one user across the identity and gameplay stores.
type GetUserQuery struct {
	UserID int64
	// RequestedBy and RequestedByRole identify the authenticated caller in the
	// lookup audit trail.
	RequestedBy     string
	RequestedByRole string
	// Capabilities names the groups to return, overriding the service's
	// configured set when non-nil. It is validated against the dependency
	// graph before any store is touched.
	Capabilities []string
}
