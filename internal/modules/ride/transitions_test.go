package ride

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allRoles = []Role{RoleUser, RoleDriver, RoleProjectManager, RoleAdmin}

var allStatuses = []Status{
	StatusPendingAdmin, StatusPendingPM, StatusPendingAdminAfterPM,
	StatusApproved, StatusInProgress, StatusCompleted, StatusRejected,
}

// TestNext verifies the transition table without a store.
func TestNext(t *testing.T) {
	cases := []struct {
		action Action
		role   Role
		from   Status
		want   Status
		ok     bool
	}{
		{ActionApprove, RoleProjectManager, StatusPendingPM, StatusPendingAdminAfterPM, true},
		{ActionApprove, RoleAdmin, StatusPendingAdmin, StatusApproved, true},
		{ActionApprove, RoleAdmin, StatusPendingAdminAfterPM, StatusApproved, true},
		{ActionReject, RoleProjectManager, StatusPendingPM, StatusRejected, true},
		{ActionReject, RoleAdmin, StatusPendingAdmin, StatusRejected, true},
		{ActionReject, RoleAdmin, StatusPendingAdminAfterPM, StatusRejected, true},
		{ActionAssign, RoleAdmin, StatusApproved, StatusInProgress, true},
		{ActionComplete, RoleDriver, StatusInProgress, StatusCompleted, true},
		{ActionStart, RoleDriver, StatusInProgress, StatusInProgress, true},
		// wrong role for the stage
		{ActionApprove, RoleProjectManager, StatusPendingAdmin, "", false},
		{ActionApprove, RoleAdmin, StatusPendingPM, "", false},
		{ActionApprove, RoleUser, StatusPendingAdmin, "", false},
		{ActionReject, RoleDriver, StatusPendingAdmin, "", false},
		// approving twice
		{ActionApprove, RoleAdmin, StatusApproved, "", false},
		// assignment only from approved
		{ActionAssign, RoleAdmin, StatusPendingAdmin, "", false},
		{ActionAssign, RoleAdmin, StatusInProgress, "", false},
		// drivers cannot skip in_progress
		{ActionComplete, RoleDriver, StatusApproved, "", false},
		{ActionStart, RoleDriver, StatusCompleted, "", false},
	}
	for _, tc := range cases {
		got, ok := Next(tc.action, tc.role, tc.from)
		assert.Equal(t, tc.ok, ok, "Next(%s, %s, %s)", tc.action, tc.role, tc.from)
		assert.Equal(t, tc.want, got, "Next(%s, %s, %s)", tc.action, tc.role, tc.from)
	}
}

func TestNext_TerminalStatusesHaveNoExits(t *testing.T) {
	for _, action := range Actions() {
		for _, role := range allRoles {
			for _, from := range []Status{StatusCompleted, StatusRejected} {
				_, ok := Next(action, role, from)
				assert.False(t, ok, "%s by %s must not leave %s", action, role, from)
			}
		}
	}
}

func TestActions(t *testing.T) {
	actions := Actions()
	assert.ElementsMatch(t, []Action{ActionApprove, ActionReject, ActionAssign, ActionStart, ActionComplete}, actions)

	// the returned slice is a copy; editing it leaves the table alone
	actions[0] = Action("teleport")
	assert.NotContains(t, Actions(), Action("teleport"))
}

func TestNext_UnknownAction(t *testing.T) {
	_, ok := Next(Action("teleport"), RoleAdmin, StatusApproved)
	assert.False(t, ok)
}

func TestApproveAndRejectShareRows(t *testing.T) {
	for _, role := range allRoles {
		for _, from := range allStatuses {
			_, approveOK := Next(ActionApprove, role, from)
			to, rejectOK := Next(ActionReject, role, from)
			assert.Equal(t, approveOK, rejectOK, "role=%s status=%s", role, from)
			if rejectOK {
				assert.Equal(t, StatusRejected, to)
			}
		}
	}
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusPendingAdmin, InitialStatus(0, 25))
	assert.Equal(t, StatusPendingAdmin, InitialStatus(12, 25))
	assert.Equal(t, StatusPendingAdmin, InitialStatus(25.0, 25), "threshold is exclusive")
	assert.Equal(t, StatusPendingPM, InitialStatus(25.1, 25))
	assert.Equal(t, StatusPendingPM, InitialStatus(94.3, 25))
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range allStatuses {
		want := s == StatusCompleted || s == StatusRejected
		assert.Equal(t, want, s.Terminal(), "status %s", s)
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	err := &TransitionError{Action: ActionApprove, Role: RoleProjectManager, Status: StatusPendingAdmin}
	assert.Equal(t, "cannot approve ride: role=project_manager, status=pending_admin", err.Error())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSourceStatus(t *testing.T) {
	pmApproved := &Ride{Approval: Approval{ProjectManager: &ApprovalDecision{Approved: true}}}
	plain := &Ride{}

	assert.Equal(t, StatusPendingPM, SourceStatus(ActionApprove, RoleProjectManager, plain))
	assert.Equal(t, StatusPendingPM, SourceStatus(ActionReject, RoleProjectManager, plain))
	assert.Equal(t, StatusPendingAdmin, SourceStatus(ActionApprove, RoleAdmin, plain))
	assert.Equal(t, StatusPendingAdminAfterPM, SourceStatus(ActionApprove, RoleAdmin, pmApproved))
	assert.Equal(t, StatusPendingAdminAfterPM, SourceStatus(ActionReject, RoleAdmin, pmApproved))
	assert.Equal(t, StatusApproved, SourceStatus(ActionAssign, RoleAdmin, plain))
	assert.Equal(t, StatusInProgress, SourceStatus(ActionComplete, RoleDriver, plain))
	assert.Equal(t, StatusNone, SourceStatus(Action("teleport"), RoleDriver, plain))
}
