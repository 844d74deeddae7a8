package submitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientRecordsCalls(t *testing.T) {
	mock := NewMockClient()

	conf, err := mock.SubmitFailover(context.Background(), 3, 101)
	require.NoError(t, err)
	assert.NotEmpty(t, conf.RequestID)
	assert.NotEmpty(t, conf.Reference)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls()[0]
	assert.Equal(t, 3, call.FailingID)
	assert.Equal(t, 101, call.BackupID)
}

func TestMockClientScriptedFailures(t *testing.T) {
	mock := NewMockClient()
	mock.FailNext(2, nil)

	_, err := mock.SubmitFailover(context.Background(), 1, 2)
	require.Error(t, err)
	_, err = mock.SubmitFailover(context.Background(), 1, 2)
	require.Error(t, err)

	conf, err := mock.SubmitFailover(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.NotNil(t, conf)

	// Failed attempts are recorded too.
	assert.Equal(t, 3, mock.CallCount())
}
