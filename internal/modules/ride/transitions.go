// README: Ride state machine as an explicit (action, role, status) table.
package ride

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionAssign   Action = "assign"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

type transitionKey struct {
	Role Role
	From Status
}

// approvalStages lists who may decide on a ride at each pending status. Approve and
// reject share these rows; only the target status differs.
var approvalStages = map[transitionKey]Status{
	{RoleProjectManager, StatusPendingPM}: StatusPendingAdminAfterPM,
	{RoleAdmin, StatusPendingAdmin}:        StatusApproved,
	{RoleAdmin, StatusPendingAdminAfterPM}: StatusApproved,
}

// transitions is the complete transition surface of a ride. Terminal statuses never
// appear as a source. Read it through Next or Actions.
var transitions = buildTransitions()

func buildTransitions() map[Action]map[transitionKey]Status {
	approve := make(map[transitionKey]Status, len(approvalStages))
	reject := make(map[transitionKey]Status, len(approvalStages))
	for k, next := range approvalStages {
		approve[k] = next
		reject[k] = StatusRejected
	}
	return map[Action]map[transitionKey]Status{
		ActionApprove: approve,
		ActionReject:  reject,
		ActionAssign: {
			{RoleAdmin, StatusApproved}: StatusInProgress,
		},
		// Re-sending in_progress is accepted as a no-op.
		ActionStart: {
			{RoleDriver, StatusInProgress}: StatusInProgress,
		},
		ActionComplete: {
			{RoleDriver, StatusInProgress}: StatusCompleted,
		},
	}
}

// Actions lists every action the state machine knows.
func Actions() []Action {
	out := make([]Action, 0, len(transitions))
	for a := range transitions {
		out = append(out, a)
	}
	return out
}

// Next returns the status reached when role performs action on a ride in from.
func Next(action Action, role Role, from Status) (Status, bool) {
	rows, ok := transitions[action]
	if !ok {
		return "", false
	}
	to, ok := rows[transitionKey{Role: role, From: from}]
	return to, ok
}

// InitialStatus routes a new ride by distance. The threshold is exclusive.
func InitialStatus(distanceKm, thresholdKm float64) Status {
	if distanceKm > thresholdKm {
		return StatusPendingPM
	}
	return StatusPendingAdmin
}

// recordDecision writes the acting role's approval slot. Slots are never cleared.
func recordDecision(r *Ride, role Role, d ApprovalDecision) {
	switch role {
	case RoleProjectManager:
		r.Approval.ProjectManager = &d
	case RoleAdmin:
		r.Approval.Admin = &d
	}
}

// SourceStatus reconstructs the status a ride was in before role applied action to
// reach its current state. Only meaningful right after a successful transition.
func SourceStatus(action Action, role Role, r *Ride) Status {
	switch action {
	case ActionApprove, ActionReject:
		if role == RoleProjectManager {
			return StatusPendingPM
		}
		if pm := r.Approval.ProjectManager; pm != nil && pm.Approved {
			return StatusPendingAdminAfterPM
		}
		return StatusPendingAdmin
	case ActionAssign:
		return StatusApproved
	case ActionStart, ActionComplete:
		return StatusInProgress
	}
	return StatusNone
}
