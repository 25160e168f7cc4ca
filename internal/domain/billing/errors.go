package billing

import "github.com/rentdesk/backend/internal/domain/shared"

// Error codes surfaced by bill generation and its follow-up operations.
const (
	CodeInvalidReading           = "INVALID_READING"
	CodeDuplicatePeriod          = "DUPLICATE_PERIOD"
	CodePersistenceFailure       = "PERSISTENCE_FAILURE"
	CodeArtifactWriteError       = "ARTIFACT_WRITE_ERROR"
	CodeNotificationEnqueueError = "NOTIFICATION_ENQUEUE_ERROR"
)

var (
	// ErrInvalidReading is returned when the present meter reading is below the previous one
	ErrInvalidReading = shared.NewDomainError(CodeInvalidReading, "Present reading cannot be lower than the previous reading")

	// ErrDuplicatePeriod is returned when a bill already exists for the tenancy and period
	ErrDuplicatePeriod = shared.NewDomainError(CodeDuplicatePeriod, "A bill already exists for this tenancy and period")

	// ErrPersistenceFailure is returned when the bill and its line items could not be written
	ErrPersistenceFailure = shared.NewDomainError(CodePersistenceFailure, "Failed to persist bill")

	// ErrArtifactWrite is returned when the payment artifact could not be rendered or stored
	ErrArtifactWrite = shared.NewDomainError(CodeArtifactWriteError, "Failed to write payment artifact")

	// ErrNotificationEnqueue is returned when the tenant notification could not be queued
	ErrNotificationEnqueue = shared.NewDomainError(CodeNotificationEnqueueError, "Failed to enqueue tenant notification")
)
