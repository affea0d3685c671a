// pkg/tenants/model.go
package tenants

// TenantReference identifies one customer tenant in a batch. Immutable value;
// DisplayName is only carried for reporting.
type TenantReference struct {
	TenantID    string `json:"tenantId"`
	DisplayName string `json:"displayName,omitempty"`
}

func (t TenantReference) Label() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.TenantID
}
