package submitter

import (
	"context"
	"time"
)

// Confirmation is the external service's acknowledgement of a failover
// submission. Reference is the service-side identifier of the accepted
// action; RequestID echoes the idempotency key we generated for the call.
type Confirmation struct {
	RequestID  string    `json:"request_id"`
	Reference  string    `json:"reference"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Client is the boundary to the trusted external transaction-submission
// service. The call is synchronous: it returns only once the service has
// accepted the action or definitively failed it — a pending submission is
// never reported as success.
type Client interface {
	// SubmitFailover asks the external system to switch capital allocation
	// from the failing strategy to the pre-vetted backup.
	SubmitFailover(ctx context.Context, failingID, backupID int) (*Confirmation, error)
}
