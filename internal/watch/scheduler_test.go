package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_DeploysPeriodically(t *testing.T) {
	deployer := newFakeDeployer()
	s, err := NewScheduler(deployer)
	require.NoError(t, err)

	id, err := s.ScheduleDeploy(context.Background(), 30*time.Millisecond, "human")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s.Start()
	defer func() { require.NoError(t, s.Stop()) }()

	for range 2 {
		select {
		case got := <-deployer.calls:
			require.Equal(t, "human", got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for scheduled deploy")
		}
	}
}

func TestScheduler_InvalidInterval(t *testing.T) {
	s, err := NewScheduler(newFakeDeployer())
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	_, err = s.ScheduleDeploy(context.Background(), 0, "human")
	require.Error(t, err)
}
