// Package auth provides the capability check invoked by handlers before a
// workflow transition runs. Role checks live here, outside the engines.
package auth

import "saccos-core/internal/apperrors"

// Role constants.
type Role string

const (
	RoleMember      Role = "member"
	RoleLoanOfficer Role = "loan_officer"
	RoleCommittee   Role = "committee_member"
	RoleAdmin       Role = "saccos_admin"
)

// Action constants name the operations an actor may be granted.
type Action string

const (
	ActionApplyLoan         Action = "loan.apply"
	ActionRunEligibility    Action = "loan.eligibility_check"
	ActionRequestGuarantors Action = "loan.request_guarantors"
	ActionRespondToPledge   Action = "loan.respond_pledge"
	ActionAssignOfficer     Action = "loan.assign_officer"
	ActionOfficerRecommend  Action = "loan.officer_recommend"
	ActionCommitteeVote     Action = "loan.committee_vote"
	ActionDisburse          Action = "loan.disburse"
	ActionViewReports       Action = "reports.view"
	ActionManageDeductions  Action = "deductions.manage"
	ActionReconcile         Action = "reconciliation.run"
)

var permissions = map[Role]map[Action]bool{
	RoleMember: {
		ActionApplyLoan:       true,
		ActionRespondToPledge: true,
	},
	RoleLoanOfficer: {
		ActionOfficerRecommend: true,
		ActionViewReports:      true,
	},
	RoleCommittee: {
		ActionCommitteeVote: true,
	},
	RoleAdmin: {
		ActionRunEligibility:    true,
		ActionRequestGuarantors: true,
		ActionAssignOfficer:     true,
		ActionOfficerRecommend:  true,
		ActionCommitteeVote:     true,
		ActionDisburse:          true,
		ActionViewReports:       true,
		ActionManageDeductions:  true,
		ActionReconcile:         true,
	},
}

// Actor is the authenticated caller, resolved by the HTTP layer.
type Actor struct {
	ID       string
	TenantID string
	Role     Role
}

// CanPerform reports whether the actor's role grants the action.
func (a Actor) CanPerform(action Action) bool {
	return permissions[a.Role][action]
}

// Require returns an AuthorizationError unless the actor can perform the
// action.
func (a Actor) Require(action Action) error {
	if !a.CanPerform(action) {
		return &apperrors.AuthorizationError{Action: string(action)}
	}
	return nil
}
