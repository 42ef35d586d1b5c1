package printjob

import (
	"fmt"
	"time"
)

// Type identifies the document kind a job produces.
type Type string

const (
	TypeKitchen Type = "kitchen"
	TypeReceipt Type = "receipt"
	TypePayment Type = "payment"
)

// Target identifies the logical printer a job is dispatched to.
type Target string

const (
	TargetKitchen Target = "kitchen"
	TargetCashier Target = "cashier"
)

// Status is the lifecycle state of a print job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is a durable print job record.
type Job struct {
	ID          string     `db:"id" json:"id"`
	OrderID     string     `db:"order_id" json:"order_id"`
	Type        Type       `db:"job_type" json:"type"`
	Target      Target     `db:"printer_target" json:"printer_target"`
	Status      Status     `db:"status" json:"status"`
	RequestedBy string     `db:"requested_by" json:"requested_by"`
	Attempts    int        `db:"attempts" json:"attempts"`
	Error       *string    `db:"error_message" json:"error,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// ParseType validates a job type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeKitchen, TypeReceipt, TypePayment:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// ParseTarget validates a printer target string.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetKitchen, TargetCashier:
		return Target(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTarget, s)
}

// DefaultTarget maps a job type to the printer that handles it when the
// caller does not name one: kitchen tickets go to the kitchen printer,
// customer documents go to the cashier printer.
func (t Type) DefaultTarget() Target {
	if t == TypeKitchen {
		return TargetKitchen
	}
	return TargetCashier
}

// CanTransition reports whether moving from s to next is allowed.
// Transitions are monotonic: pending -> processing -> {completed, failed}.
// Terminal states never transition again and a processing job cannot go
// back to pending.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
