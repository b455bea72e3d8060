// Package notify delivers workflow notifications to members, guarantors,
// and committee members. Delivery is fire-and-forget: a failed send is
// logged and never fails the transition that triggered it.
package notify

import "go.uber.org/zap"

// Event names the workflow moments that produce a notification.
type Event string

const (
	EventGuarantorRequested Event = "guarantor_requested"
	EventGuarantorAccepted  Event = "guarantor_accepted"
	EventGuarantorRejected  Event = "guarantor_rejected"
	EventLoanQueried        Event = "loan_queried"
	EventLoanApproved       Event = "loan_approved"
	EventLoanRejected       Event = "loan_rejected"
	EventLoanDisbursed      Event = "loan_disbursed"
	EventVoteRecorded       Event = "vote_recorded"
)

// Message is one notification addressed to a member or staff user.
type Message struct {
	Event       Event
	RecipientID string
	LoanID      string
	Body        string
}

type Notifier interface {
	Notify(msg Message)
}

// LogNotifier writes notifications to the structured log. It stands in for
// an SMS or email gateway in environments without one configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(msg Message) {
	n.log.Info("notification",
		zap.String("event", string(msg.Event)),
		zap.String("recipient_id", msg.RecipientID),
		zap.String("loan_id", msg.LoanID),
		zap.String("body", msg.Body),
	)
}
