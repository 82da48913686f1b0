package claim

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/latticehq/lattice/internal/latticeerr"
	"github.com/stretchr/testify/require"
)

func TestClaimThenReleaseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Claim(dir, "K2X2", "agent-a", 0))

	record, err := Get(dir, "K2X2")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "agent-a", record.Claimant)

	require.NoError(t, Release(dir, "K2X2", 0, false))

	record, err = Get(dir, "K2X2")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestClaimAlreadyClaimedFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Claim(dir, "K2X2", "agent-a", 0))

	err := Claim(dir, "K2X2", "agent-b", 0)
	require.Error(t, err)
	kind, ok := latticeerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, latticeerr.OperationNotAllowed, kind)
}

func TestClaimOverStaleClaimFailsUntilExplicitlyReleased(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Claim(dir, "K2X2", "agent-a", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	err := Claim(dir, "K2X2", "agent-b", time.Millisecond)
	require.Error(t, err)
	kind, ok := latticeerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, latticeerr.OperationNotAllowed, kind)

	// A plain release refuses to clear a stale claim without force.
	err = Release(dir, "K2X2", time.Millisecond, false)
	require.Error(t, err)
	record, err := Get(dir, "K2X2")
	require.NoError(t, err)
	require.Equal(t, "agent-a", record.Claimant)

	require.NoError(t, Release(dir, "K2X2", time.Millisecond, true))
	require.NoError(t, Claim(dir, "K2X2", "agent-b", time.Millisecond))
	record, err = Get(dir, "K2X2")
	require.NoError(t, err)
	require.Equal(t, "agent-b", record.Claimant)
}

func TestReleaseOfUnclaimedIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Release(dir, "NOPE2", 0, false))
}

func TestReleaseOfActiveClaimNeverNeedsForce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Claim(dir, "K2X2", "agent-a", time.Hour))
	require.NoError(t, Release(dir, "K2X2", time.Hour, false))
}

func TestListReturnsActiveClaims(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Claim(dir, "K2X2", "agent-a", 0))
	require.NoError(t, Claim(dir, "K2X3", "agent-b", 0))

	records, err := List(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestConcurrentClaimsOnSameDocumentOnlyOneWins(t *testing.T) {
	dir := t.TempDir()
	const n = 10
	var wg sync.WaitGroup
	var successes atomic.Int32

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			claimant := filepath.Join("agent", string(rune('A'+idx)))
			if err := Claim(dir, "K2X2", claimant, 0); err == nil {
				successes.Add(1)
			} else {
				kind, ok := latticeerr.KindOf(err)
				require.True(t, ok)
				require.Equal(t, latticeerr.OperationNotAllowed, kind)
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, int32(1), successes.Load())
}
