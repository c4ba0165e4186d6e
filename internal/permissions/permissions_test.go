package permissions

import "testing"

func TestAllowedDeniesUnknownTriples(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		resource string
		action   string
		role     string
	}{
		{"unknown resource", "Fuel_Log", ActionView, RoleSupervisor},
		{"unknown action", ResourceCleaningLog, "export", RoleSupervisor},
		{"unknown role", ResourceCleaningLog, ActionView, "Intern"},
		{"empty role", ResourceCleaningLog, ActionView, ""},
		{"role not in list", ResourceUsers, ActionView, RoleDriver},
	}
	for _, tc := range cases {
		if Allowed(tc.resource, tc.action, tc.role) {
			t.Errorf("%s: Allowed(%q, %q, %q) = true, want false", tc.name, tc.resource, tc.action, tc.role)
		}
	}
}

func TestAllowedKnownTriples(t *testing.T) {
	t.Parallel()

	if !Allowed(ResourceEquipmentList, ActionView, RoleDriver) {
		t.Error("Driver should view Equipment_List")
	}
	if Allowed(ResourceEquipmentList, ActionAdd, RoleDriver) {
		t.Error("Driver should not add to Equipment_List")
	}
	if !Allowed(ResourceCleaningLog, ActionAdd, RoleCleaner) {
		t.Error("Cleaning Guy should add to Cleaning_Log")
	}
	if !Allowed(ResourceUsers, ActionDelete, RoleAdmin) {
		t.Error("Admin should delete from Users")
	}
	if Allowed(ResourceSuivi, ActionEdit, RoleHSEGTG) {
		t.Error("HSE GTG is view-only on Suivi")
	}
	if !Allowed(ResourceSuivi, ActionView, RoleHSEGTG) {
		t.Error("HSE GTG should view Suivi")
	}
}

func TestRoleIsExactMatch(t *testing.T) {
	t.Parallel()

	// No hierarchy: capitalization variants are different roles.
	if Allowed(ResourceEquipmentList, ActionView, "driver") {
		t.Error("role matching must be exact")
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Suivi":           ResourceSuivi,
		"suivi":           ResourceSuivi,
		"USERS":           ResourceUsers,
		"machinerytypes":  ResourceMachineryTypes,
		"machinery_types": ResourceMachineryTypes,
		" Cleaning_Log ":  ResourceCleaningLog,
	}
	for input, want := range cases {
		got, ok := Resolve(input)
		if !ok || got != want {
			t.Errorf("Resolve(%q) = %q, %v; want %q, true", input, got, ok, want)
		}
	}

	if _, ok := Resolve("Payroll"); ok {
		t.Error("Resolve should reject resources this API does not serve")
	}
}
