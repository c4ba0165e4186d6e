// Package permissions holds the static resource/action/role table.
// Lookup is exact and deny-by-default: a triple not enumerated here is
// not allowed, and there is no role hierarchy or inheritance.
package permissions

import "strings"

// Actions a role can be granted on a resource.
const (
	ActionView   = "view"
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Role names as stored in the Users resource.
const (
	RoleSupervisor = "Supervisor"
	RoleMechanic   = "Mechanic"
	RoleDriver     = "Driver"
	RoleCleaner    = "Cleaning Guy"
	RoleAdmin      = "Admin"
	RoleGuest      = "Guest"
	RoleManager    = "Manager"
	RoleSupLog     = "Sup Log"
	RoleHSEGTG     = "HSE GTG"
)

// Canonical resource (sheet tab) names.
const (
	ResourceMaintenanceLog    = "Maintenance_Log"
	ResourceRequestsParts     = "Requests_Parts"
	ResourceGreaseOilRequests = "Grease_Oil_Requests"
	ResourceCleaningLog       = "Cleaning_Log"
	ResourceEquipmentList     = "Equipment_List"
	ResourceUsers             = "Users"
	ResourceChecklistLog      = "Checklist_Log"
	ResourceSuivi             = "Suivi"
	ResourceMachineryTypes    = "MachineryTypes"
	ResourceRequestsPartsLog  = "Requests_Parts_Log"
	ResourceGreaseOilLog      = "Grease_Oil_Log"
)

var table = map[string]map[string][]string{
	ResourceMaintenanceLog: {
		ActionView:   {RoleSupervisor, RoleMechanic, RoleDriver, RoleAdmin, RoleGuest, RoleManager},
		ActionAdd:    {RoleSupervisor, RoleMechanic, RoleAdmin, RoleGuest},
		ActionEdit:   {RoleSupervisor, RoleMechanic, RoleAdmin},
		ActionDelete: {RoleSupervisor, RoleAdmin},
	},
	ResourceRequestsParts: {
		ActionView:   {RoleSupervisor, RoleMechanic, RoleDriver, RoleAdmin, RoleGuest, RoleManager},
		ActionAdd:    {RoleSupervisor, RoleMechanic, RoleDriver, RoleAdmin, RoleGuest},
		ActionEdit:   {RoleSupervisor, RoleMechanic, RoleAdmin},
		ActionDelete: {RoleSupervisor, RoleAdmin},
	},
	ResourceGreaseOilRequests: {
		ActionView:   {RoleSupervisor, RoleMechanic, RoleDriver, RoleAdmin, RoleGuest, RoleManager},
		ActionAdd:    {RoleSupervisor, RoleMechanic, RoleDriver, RoleAdmin, RoleGuest},
		ActionEdit:   {RoleSupervisor, RoleMechanic, RoleAdmin},
		ActionDelete: {RoleSupervisor, RoleAdmin},
	},
	ResourceCleaningLog: {
		ActionView:   {RoleSupervisor, RoleMechanic, RoleDriver, RoleCleaner, RoleAdmin, RoleGuest, RoleManager, RoleSupLog},
		ActionAdd:    {RoleSupervisor, RoleCleaner, RoleAdmin, RoleGuest, RoleSupLog},
		ActionEdit:   {RoleSupervisor, RoleMechanic, RoleDriver, RoleCleaner, RoleAdmin},
		ActionDelete: {RoleSupervisor, RoleAdmin},
	},
	ResourceEquipmentList: {
		ActionView:   {RoleSupervisor, RoleMechanic, RoleDriver, RoleCleaner, RoleAdmin, RoleGuest, RoleManager, RoleSupLog, RoleHSEGTG},
		ActionAdd:    {RoleSupervisor, RoleAdmin},
		ActionEdit:   {RoleSupervisor, RoleAdmin},
		ActionDelete: {RoleSupervisor, RoleAdmin},
	},
	ResourceUsers: {
		ActionView:   {RoleAdmin},
		ActionAdd:    {RoleAdmin},
		ActionEdit:   {RoleAdmin},
		ActionDelete: {RoleAdmin},
	},
	ResourceChecklistLog: {
		ActionView:   {RoleSupervisor, RoleDriver, RoleAdmin, RoleGuest, RoleManager, RoleSupLog},
		ActionAdd:    {RoleSupervisor, RoleDriver, RoleAdmin, RoleGuest, RoleSupLog},
		ActionEdit:   {RoleSupervisor, RoleAdmin},
		ActionDelete: {RoleSupervisor, RoleAdmin},
	},
	ResourceSuivi: {
		ActionView:   {RoleSupervisor, RoleDriver, RoleAdmin, RoleGuest, RoleManager, RoleSupLog, RoleHSEGTG},
		ActionAdd:    {RoleSupervisor, RoleAdmin},
		ActionEdit:   {RoleSupervisor, RoleAdmin},
		ActionDelete: {RoleSupervisor, RoleAdmin},
	},
	ResourceMachineryTypes: {
		ActionView:   {RoleSupervisor, RoleMechanic, RoleDriver, RoleCleaner, RoleAdmin, RoleGuest, RoleManager, RoleSupLog, RoleHSEGTG},
		ActionAdd:    {RoleAdmin},
		ActionEdit:   {RoleAdmin},
		ActionDelete: {RoleAdmin},
	},
	ResourceRequestsPartsLog: {
		ActionView: {RoleSupervisor, RoleMechanic, RoleAdmin, RoleGuest, RoleManager},
	},
	ResourceGreaseOilLog: {
		ActionView: {RoleSupervisor, RoleMechanic, RoleAdmin, RoleGuest, RoleManager},
	},
}

// aliases map lowercase short names to canonical resource names.
var aliases = func() map[string]string {
	m := make(map[string]string, len(table))
	for name := range table {
		m[strings.ToLower(name)] = name
	}
	m["machinery_types"] = ResourceMachineryTypes
	return m
}()

// Allowed reports whether role may perform action on resource.
// Unknown resources, actions and roles all yield false.
func Allowed(resource, action, role string) bool {
	actions, ok := table[resource]
	if !ok {
		return false
	}
	for _, allowed := range actions[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Resolve maps a path segment to its canonical resource name.
// The second return is false for resources this API does not serve.
func Resolve(name string) (string, bool) {
	canonical, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// Resources returns every canonical resource name.
func Resources() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	return names
}
