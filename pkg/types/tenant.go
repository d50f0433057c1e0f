package types

// TenantContext identifies the tenant (customer) whose rule set applies to a
// resolution or scan. The zero value is the anonymous tenant: rules are
// resolved but never cached.
type TenantContext struct {
	ID string `json:"id"`
}

// Tenant returns a TenantContext for id.
func Tenant(id string) TenantContext {
	return TenantContext{ID: id}
}

// IsZero reports whether the tenant is anonymous.
func (t TenantContext) IsZero() bool {
	return t.ID == ""
}

func (t TenantContext) String() string {
	if t.ID == "" {
		return "<anonymous>"
	}
	return t.ID
}
