package shared

// Property portfolio permissions. PermPropertyView is the key the access
// guard pivots on for property visibility checks.
const (
	PermPropertyView = "property.view"
	PermPropertyEdit = "property.edit"

	PermLeaseView = "lease.view"
	PermLeaseEdit = "lease.edit"
)

// PropertyScopes lists all permissions related to the property module.
func PropertyScopes() []string {
	return []string{
		PermPropertyView,
		PermPropertyEdit,
		PermLeaseView,
		PermLeaseEdit,
	}
}
