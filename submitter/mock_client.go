package submitter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

//
// Complete mock client for running and testing the oracle without a real
// submission service.
//

// Ensure MockClient implements the Client interface.
var _ Client = (*MockClient)(nil)

// Call records the arguments of one SubmitFailover invocation.
type Call struct {
	FailingID int
	BackupID  int
	At        time.Time
}

// MockClient is a scriptable in-memory implementation of Client. It records
// every invocation and can be told to fail the next N calls, which is how
// the retry-after-commit-failure path is exercised.
type MockClient struct {
	mu        sync.Mutex
	calls     []Call
	failNext  int
	failErr   error
	submitLag time.Duration
}

// NewMockClient creates a mock submission client that accepts every call.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// FailNext makes the next n submissions fail with err. A nil err installs a
// generic rejection error.
func (c *MockClient) FailNext(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext = n
	if err == nil {
		err = fmt.Errorf("mock submission service rejected the request")
	}
	c.failErr = err
}

// SetSubmitLag adds an artificial delay to every submission, for exercising
// the synchronous-commit contract under slow collaborators.
func (c *MockClient) SetSubmitLag(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitLag = d
}

// SubmitFailover records the call and returns either a confirmation or the
// scripted failure. Every call is recorded, including failed ones.
func (c *MockClient) SubmitFailover(ctx context.Context, failingID, backupID int) (*Confirmation, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{FailingID: failingID, BackupID: backupID, At: time.Now()})
	lag := c.submitLag
	var scripted error
	if c.failNext > 0 {
		c.failNext--
		scripted = c.failErr
	}
	c.mu.Unlock()

	if lag > 0 {
		select {
		case <-time.After(lag):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if scripted != nil {
		return nil, scripted
	}

	return &Confirmation{
		RequestID:  uuid.NewString(),
		Reference:  fmt.Sprintf("mock-failover-%d-to-%d", failingID, backupID),
		AcceptedAt: time.Now(),
	}, nil
}

// CallCount returns how many times SubmitFailover has been invoked.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Calls returns a copy of every recorded invocation.
func (c *MockClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}
