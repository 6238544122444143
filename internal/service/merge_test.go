package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

func TestMatchAccounts(t *testing.T) {
	tests := []struct {
		name      string
		zero      []model.User
		source    []model.User
		wantTypes []string
	}{
		{
			name:      "email exact",
			zero:      []model.User{{UID: "z1", Email: "x@y.com"}},
			source:    []model.User{{UID: "s1", Email: "X@Y.com", GreenPoints: 10}},
			wantTypes: []string{"email"},
		},
		{
			name:      "name exact over length 3",
			zero:      []model.User{{UID: "z1", DisplayName: "Nguyễn Văn A"}},
			source:    []model.User{{UID: "s1", DisplayName: "nguyen van a", GreenPoints: 5}},
			wantTypes: []string{"name_exact"},
		},
		{
			name:      "short exact name rejected",
			zero:      []model.User{{UID: "z1", DisplayName: "Abc"}},
			source:    []model.User{{UID: "s1", DisplayName: "abc", GreenPoints: 5}},
			wantTypes: nil,
		},
		{
			name:      "name prefix",
			zero:      []model.User{{UID: "z1", DisplayName: "nguyenvana"}},
			source:    []model.User{{UID: "s1", DisplayName: "nguyenvana2024", GreenPoints: 5}},
			wantTypes: []string{"name_similar"},
		},
		{
			name:      "name substring",
			zero:      []model.User{{UID: "z1", DisplayName: "xxnguyenvanaxx"}},
			source:    []model.User{{UID: "s1", DisplayName: "nguyenvana", GreenPoints: 5}},
			wantTypes: []string{"name_partial"},
		},
		{
			name: "source consumed once",
			zero: []model.User{
				{UID: "z1", Email: "dup@y.com"},
				{UID: "z2", Email: "dup@y.com"},
			},
			source:    []model.User{{UID: "s1", Email: "dup@y.com", GreenPoints: 9}},
			wantTypes: []string{"email"},
		},
		{
			name: "sorted by score desc",
			zero: []model.User{
				{UID: "z1", DisplayName: "nguyenvana"},
				{UID: "z2", Email: "a@b.com"},
			},
			source: []model.User{
				{UID: "s1", DisplayName: "nguyenvana2024", GreenPoints: 1},
				{UID: "s2", Email: "a@b.com", GreenPoints: 2},
			},
			wantTypes: []string{"email", "name_similar"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchAccounts(tt.zero, tt.source)
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("got %d matches, want %d: %+v", len(got), len(tt.wantTypes), got)
			}
			for i, want := range tt.wantTypes {
				if got[i].MatchType != want {
					t.Fatalf("match[%d].type=%s want %s", i, got[i].MatchType, want)
				}
			}
		})
	}
}

func TestMatchAccountsIdempotent(t *testing.T) {
	zero := []model.User{
		{UID: "z1", Email: "a@b.com"},
		{UID: "z2", DisplayName: "nguyenvana"},
	}
	source := []model.User{
		{UID: "s1", Email: "a@b.com", GreenPoints: 10},
		{UID: "s2", DisplayName: "nguyenvana2024", GreenPoints: 20},
	}
	first := matchAccounts(zero, source)
	second := matchAccounts(zero, source)
	if len(first) != len(second) {
		t.Fatalf("match counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("match[%d] differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func newMergeFixture(t *testing.T) (*store.Memory, MergeService) {
	t.Helper()
	st := store.NewMemory()
	svc := NewMergeService(
		repository.NewUserRepository(st),
		repository.NewTeamRepository(st),
		repository.NewSnapshotRepository(st),
		repository.NewProgressRepository(st),
	)
	return st, svc
}

func TestMergePair(t *testing.T) {
	ctx := context.Background()
	st, svc := newMergeFixture(t)

	require.NoError(t, st.Set(ctx, "users", "A", map[string]any{
		"uid": "A", "email": "x@y.com", "displayName": "Nguyen Van A",
		"greenPoints": int64(500), "farmLevel": int64(3),
	}))
	require.NoError(t, st.Set(ctx, "users", "B", map[string]any{
		"uid": "B", "email": "x@y.com", "greenPoints": int64(0),
	}))

	out, err := svc.MergePair(ctx, "B", "A")
	require.NoError(t, err)
	require.Equal(t, int64(500), out.GreenPoints)

	doc, err := st.Get(ctx, "users", "B")
	require.NoError(t, err)
	require.Equal(t, int64(500), doc.Data["greenPoints"])
	require.Equal(t, "A", doc.Data["originalUid"])
	require.Equal(t, "B", doc.Data["uid"])
	// Source-only fields survive the spread.
	require.Equal(t, int64(3), doc.Data["farmLevel"])
	// Target had no name, so the source's carries over.
	require.Equal(t, "Nguyen Van A", doc.Data["displayName"])

	_, err = st.Get(ctx, "users", "A")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The source document was archived for the restore tool.
	backup, err := st.Get(ctx, "users_backup", "A")
	require.NoError(t, err)
	require.Equal(t, int64(500), backup.Data["greenPoints"])
}

func TestMergePairTargetFieldsWin(t *testing.T) {
	ctx := context.Background()
	st, svc := newMergeFixture(t)

	require.NoError(t, st.Set(ctx, "users", "A", map[string]any{
		"uid": "A", "displayName": "Old Name", "photoURL": "old.png", "greenPoints": int64(50),
	}))
	require.NoError(t, st.Set(ctx, "users", "B", map[string]any{
		"uid": "B", "displayName": "New Name", "photoURL": "new.png", "greenPoints": int64(80),
	}))

	_, err := svc.MergePair(ctx, "B", "A")
	require.NoError(t, err)

	doc, _ := st.Get(ctx, "users", "B")
	require.Equal(t, "New Name", doc.Data["displayName"])
	require.Equal(t, "new.png", doc.Data["photoURL"])
	require.Equal(t, int64(80), doc.Data["greenPoints"])
}

func TestMergePairSourceMissing(t *testing.T) {
	ctx := context.Background()
	_, svc := newMergeFixture(t)

	_, err := svc.MergePair(ctx, "B", "missing")
	require.ErrorIs(t, err, ErrSourceNotFound)
}

func TestMergePairMovesMembershipsAndSnapshots(t *testing.T) {
	ctx := context.Background()
	st, svc := newMergeFixture(t)

	require.NoError(t, st.Set(ctx, "users", "A", map[string]any{"uid": "A", "greenPoints": int64(10)}))
	require.NoError(t, st.Set(ctx, "users", "B", map[string]any{"uid": "B", "greenPoints": int64(0)}))
	require.NoError(t, st.Set(ctx, "team_members", "m1", map[string]any{"userId": "A", "teamId": "t1", "role": "member"}))
	require.NoError(t, st.Set(ctx, "team_members", "m2", map[string]any{"userId": "A", "teamId": "t2"}))
	require.NoError(t, st.Set(ctx, "team_members", "m3", map[string]any{"userId": "B", "teamId": "t2"}))
	require.NoError(t, st.Set(ctx, "points_snapshots", "A_2026-08-30", map[string]any{
		"userId": "A", "date": "2026-08-30", "points": int64(7),
	}))

	_, err := svc.MergePair(ctx, "B", "A")
	require.NoError(t, err)

	members, err := st.Query(ctx, "team_members", store.Query{
		Filters: []store.Filter{{Field: "userId", Op: "==", Value: "B"}},
	})
	require.NoError(t, err)
	teamIDs := map[string]bool{}
	for _, m := range members {
		teamIDs[m.Data["teamId"].(string)] = true
	}
	// t1 re-pointed, t2 kept once (target was already a member).
	require.Len(t, members, 2)
	require.True(t, teamIDs["t1"] && teamIDs["t2"])

	orphans, err := st.Query(ctx, "team_members", store.Query{
		Filters: []store.Filter{{Field: "userId", Op: "==", Value: "A"}},
	})
	require.NoError(t, err)
	require.Empty(t, orphans)

	snap, err := st.Get(ctx, "points_snapshots", "B_2026-08-30")
	require.NoError(t, err)
	require.Equal(t, "B", snap.Data["userId"])
	require.Equal(t, int64(7), snap.Data["points"])
	_, err = st.Get(ctx, "points_snapshots", "A_2026-08-30")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMergeAllContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	st, svc := newMergeFixture(t)

	require.NoError(t, st.Set(ctx, "users", "A", map[string]any{"uid": "A", "greenPoints": int64(10)}))
	require.NoError(t, st.Set(ctx, "users", "B", map[string]any{"uid": "B", "greenPoints": int64(0)}))

	res, err := svc.MergeAll(ctx, []MergePair{
		{NewUID: "X", OldUID: "missing", Email: "gone@y.com"},
		{NewUID: "B", OldUID: "A", Email: "x@y.com"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount)
	require.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Results, 2)
	require.NotEmpty(t, res.Results[0].Error)
	require.True(t, res.Results[1].Success)
}
