// Package support defines the support case domain entities.
package support

// Status is the workflow state of a support case. "Overdue" is advisory: it
// is only ever set by a user action or seed data, never recomputed from the
// due date.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusOverdue   Status = "Overdue"
	StatusCompleted Status = "Completed"
	StatusOnHold    Status = "OnHold"
)

// ValidStatus reports whether s is one of the four enumerated case states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusOverdue, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// Connectivity is the observed link state recorded on a case.
type Connectivity string

const (
	ConnectivityStable   Connectivity = "Stable"
	ConnectivityUnstable Connectivity = "Unstable"
	ConnectivityUnknown  Connectivity = "Unknown"
)

// ValidConnectivity reports whether c is one of the enumerated link states.
func ValidConnectivity(c Connectivity) bool {
	switch c {
	case ConnectivityStable, ConnectivityUnstable, ConnectivityUnknown:
		return true
	}
	return false
}

// Case represents a support ticket opened against exactly one lead. Many
// cases may reference one lead; referential integrity is enforced by the
// application, not the store. AssignedDate and DueDate are ISO-8601
// timestamps carried as strings on the wire.
type Case struct {
	ID           string       `json:"id"`
	LeadCkt      string       `json:"leadCkt"`
	IPAddress    string       `json:"ipAddress"`
	Connectivity Connectivity `json:"connectivity"`
	AssignedDate string       `json:"assignedDate"`
	DueDate      string       `json:"dueDate"`
	CaseRemarks  string       `json:"caseRemarks"`
	Status       Status       `json:"status"`
	CreatedBy    string       `json:"created_by,omitempty"`
	CreatedAt    string       `json:"created_at,omitempty"`
}
