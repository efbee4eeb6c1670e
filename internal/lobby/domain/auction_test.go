package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAuction(t *testing.T) {
	t.Parallel()

	a := NewAuction(1, "Widget", 7, "alice", 10.0)

	require.True(t, a.IsOpen)
	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(7), a.OwnerID)
	require.Equal(t, "alice", a.OwnerName)
	require.Equal(t, 10.0, a.StartingCost)
	require.Equal(t, 10.0, a.CurrentCost)
	require.Empty(t, a.CurrentWinner)
	require.Empty(t, a.Bids)
}

func TestAuction_ApplyBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		bids       []Bid
		wantCost   float64
		wantWinner string
	}{
		{
			name:       "no_bids",
			bids:       nil,
			wantCost:   10.0,
			wantWinner: "",
		},
		{
			name:       "bid_above_start_takes_lead",
			bids:       []Bid{NewBid(2, "bob", 12.0)},
			wantCost:   12.0,
			wantWinner: "bob",
		},
		{
			name: "tie_keeps_incumbent",
			bids: []Bid{
				NewBid(2, "bob", 12.0),
				NewBid(3, "carol", 12.0),
			},
			wantCost:   12.0,
			wantWinner: "bob",
		},
		{
			name: "lower_bid_recorded_but_not_leading",
			bids: []Bid{
				NewBid(2, "bob", 12.0),
				NewBid(3, "carol", 11.0),
			},
			wantCost:   12.0,
			wantWinner: "bob",
		},
		{
			name:       "bid_equal_to_starting_cost_does_not_lead",
			bids:       []Bid{NewBid(2, "bob", 10.0)},
			wantCost:   10.0,
			wantWinner: "",
		},
		{
			name: "higher_bid_replaces_leader",
			bids: []Bid{
				NewBid(2, "bob", 12.0),
				NewBid(3, "carol", 15.0),
			},
			wantCost:   15.0,
			wantWinner: "carol",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := NewAuction(1, "Widget", 7, "alice", 10.0)
			for _, b := range tc.bids {
				require.NoError(t, a.ApplyBid(b))
			}

			require.Equal(t, tc.wantCost, a.CurrentCost)
			require.Equal(t, tc.wantWinner, a.CurrentWinner)
			// Every bid stays in the history regardless of the outcome.
			require.Len(t, a.Bids, len(tc.bids))
		})
	}
}

func TestAuction_ApplyBid_Closed(t *testing.T) {
	t.Parallel()

	a := NewAuction(1, "Widget", 7, "alice", 10.0)
	require.NoError(t, a.Close(7))

	err := a.ApplyBid(NewBid(2, "bob", 50.0))
	require.ErrorIs(t, err, ErrAuctionNotOpen)
	require.Empty(t, a.Bids)
	require.Equal(t, 10.0, a.CurrentCost)
}

func TestAuction_Close(t *testing.T) {
	t.Parallel()

	t.Run("owner_closes", func(t *testing.T) {
		t.Parallel()
		a := NewAuction(1, "Widget", 7, "alice", 10.0)
		require.NoError(t, a.Close(7))
		require.False(t, a.IsOpen)
	})

	t.Run("non_owner_rejected", func(t *testing.T) {
		t.Parallel()
		a := NewAuction(1, "Widget", 7, "alice", 10.0)
		err := a.Close(8)
		require.ErrorIs(t, err, ErrNotOwner)
		require.True(t, a.IsOpen)
	})

	t.Run("close_twice_is_noop", func(t *testing.T) {
		t.Parallel()
		a := NewAuction(1, "Widget", 7, "alice", 10.0)
		require.NoError(t, a.Close(7))
		require.NoError(t, a.Close(7))
		require.False(t, a.IsOpen)
	})
}

func TestAuction_Copy(t *testing.T) {
	t.Parallel()

	a := NewAuction(1, "Widget", 7, "alice", 10.0)
	require.NoError(t, a.ApplyBid(NewBid(2, "bob", 12.0)))

	snapshot := a.Copy()
	require.NoError(t, a.ApplyBid(NewBid(3, "carol", 20.0)))

	// The copy is detached from later mutations.
	require.Len(t, snapshot.Bids, 1)
	require.Equal(t, 12.0, snapshot.CurrentCost)
	require.Equal(t, 20.0, a.CurrentCost)
}
