package queue

// Reason recorded when an organization was created but the owner could not be
// added to it.
const ReasonOwnerAssignmentFailed = "owner_assignment_failed"

// OrphanMessage describes an organization that may have been left without any
// member by a failed provisioning run.
type OrphanMessage struct {
	OrgCode   string
	CreatedBy string // provider user ID of the requester
	Reason    string
	LastError string
	TraceID   *string
	Attempt   int
}
