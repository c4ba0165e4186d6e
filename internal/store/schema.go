package store

import "github.com/fleetdesk/apiserver/internal/permissions"

// Schema returns the canonical header row for each resource. The init
// command uses it to bootstrap missing tabs; at request time the live
// header row always wins.
func Schema() map[string][]string {
	return map[string][]string{
		permissions.ResourceMaintenanceLog: {
			"ID", "Date", "Plate Number", "Model Type", "Work Done",
			"Parts Used", "Mechanic", "Notes", "Photo Before", "Photo After",
		},
		permissions.ResourceRequestsParts: {
			"ID", "Request Date", "Plate Number", "Part", "Quantity",
			"Requested By", "Status", "Handled By", "Appointment Date",
			"Completion Date", "Photo Before", "Photo After",
		},
		permissions.ResourceGreaseOilRequests: {
			"ID", "Request Date", "Plate Number", "Service", "Requested By",
			"Status", "Handled By", "Appointment Date", "Completion Date",
			"Photo Before", "Photo After",
		},
		permissions.ResourceCleaningLog: {
			"ID", "Date", "Plate Number", "Cleaned By", "Area", "Notes", "Photo",
		},
		permissions.ResourceEquipmentList: {
			"ID", "Plate Number", "Model Type", "Driver 1", "Driver 2", "Status",
		},
		permissions.ResourceUsers: {
			"Username", "Password", "Role", "Full Name",
		},
		permissions.ResourceChecklistLog: {
			"ID", "Date", "Plate Number", "Driver", "Checklist", "Result", "Notes",
		},
		permissions.ResourceSuivi: {
			"ID", "Status", "Machinery", "Type", "Model Type", "Plate Number",
			"Driver 1", "Driver 2", "Insurance", "Technical Inspection",
			"Certificate", "Inspection Date", "Next Inspection", "Documents",
			"Driver 1 Doc", "Driver 2 Doc",
		},
		permissions.ResourceMachineryTypes: {
			"Machinery", "Type",
		},
		permissions.ResourceRequestsPartsLog: {
			"ID", "Request Date", "Plate Number", "Part", "Quantity",
			"Requested By", "Handled By", "Completed On", "Outcome",
		},
		permissions.ResourceGreaseOilLog: {
			"ID", "Request Date", "Plate Number", "Service", "Requested By",
			"Handled By", "Completed On", "Outcome",
		},
	}
}
