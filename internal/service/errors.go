package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/membership"
)

// --- Error Definitions ---
var (
	ErrValidationFailed = errors.New("validation failed")

	ErrGymNotFound     = errors.New("gym not found")
	ErrAccessDenied    = errors.New("access denied to this gym")
	ErrOwnerOnly       = errors.New("only the gym owner can perform this action")
	ErrPlanNotFound    = errors.New("plan not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrManagerNotFound = errors.New("manager not found")

	ErrDuplicateMemberID = errors.New("member id already exists in this gym")
	ErrOutstandingDue    = errors.New("member has an outstanding due; record the payment before renewing")
	ErrPlanLimitReached  = errors.New("subscription plan limit reached")

	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrPaymentAlreadyApplied     = errors.New("payment has already been applied")
	ErrStorageUnavailable        = errors.New("file storage is not configured")
)

// ValidationError lists the offending input fields. It matches
// ErrValidationFailed with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// IsValidation reports whether err was caused by bad caller input, including
// the domain rule violations raised by the membership calculators.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, membership.ErrInvalidPricing) ||
		errors.Is(err, membership.ErrInvalidDurationUnit) ||
		errors.Is(err, membership.ErrInvalidDurationValue)
}

// WriteStep names the write that failed during a non-atomic lifecycle
// operation.
type WriteStep string

const (
	StepMember      WriteStep = "member"
	StepTransaction WriteStep = "transaction"
	StepHistory     WriteStep = "membership_history"
)

// WriteOperation is the lifecycle operation a PartialWriteError belongs to.
type WriteOperation string

const (
	OpEnrollment WriteOperation = "enrollment"
	OpRenewal    WriteOperation = "renewal"
	OpDuePayment WriteOperation = "due_payment"
)

// PartialWriteError is returned when some writes of a multi-record lifecycle
// operation were persisted and a later one failed without a rollback.
// Member is the member record as it was left in storage.
type PartialWriteError struct {
	Op     WriteOperation
	Member *domain.Member
	Step   WriteStep
	Err    error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s of member %s partially saved: %s write failed: %v", e.Op, e.Member.MemberID, e.Step, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
