package repository

import (
	"context"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type TeamRepository interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
	ListMembersByTeam(ctx context.Context, teamID string) ([]model.TeamMember, error)
	ListMembershipDocsByUser(ctx context.Context, userID string) ([]store.Doc, error)
	MembershipExists(ctx context.Context, userID, teamID string) (bool, error)
	AddMembership(ctx context.Context, data map[string]any) (string, error)
	DeleteMembership(ctx context.Context, id string) error
}

type teamRepository struct {
	store store.Store
}

func NewTeamRepository(s store.Store) TeamRepository {
	return &teamRepository{store: s}
}

func (r *teamRepository) ListTeams(ctx context.Context) ([]model.Team, error) {
	docs, err := r.store.Query(ctx, ColTeams, store.Query{})
	if err != nil {
		return nil, err
	}
	teams := make([]model.Team, 0, len(docs))
	for _, d := range docs {
		var t model.Team
		if err := model.Decode(d.Data, &t); err != nil {
			return nil, err
		}
		t.ID = d.ID
		teams = append(teams, t)
	}
	return teams, nil
}

func (r *teamRepository) ListMembersByTeam(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	docs, err := r.store.Query(ctx, ColTeamMembers, store.Query{
		Filters: []store.Filter{{Field: "teamId", Op: "==", Value: teamID}},
	})
	if err != nil {
		return nil, err
	}
	members := make([]model.TeamMember, 0, len(docs))
	for _, d := range docs {
		var m model.TeamMember
		if err := model.Decode(d.Data, &m); err != nil {
			return nil, err
		}
		m.ID = d.ID
		members = append(members, m)
	}
	return members, nil
}

func (r *teamRepository) ListMembershipDocsByUser(ctx context.Context, userID string) ([]store.Doc, error) {
	return r.store.Query(ctx, ColTeamMembers, store.Query{
		Filters: []store.Filter{{Field: "userId", Op: "==", Value: userID}},
	})
}

func (r *teamRepository) MembershipExists(ctx context.Context, userID, teamID string) (bool, error) {
	docs, err := r.store.Query(ctx, ColTeamMembers, store.Query{
		Filters: []store.Filter{
			{Field: "userId", Op: "==", Value: userID},
			{Field: "teamId", Op: "==", Value: teamID},
		},
		Limit: 1,
	})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

func (r *teamRepository) AddMembership(ctx context.Context, data map[string]any) (string, error) {
	return r.store.Add(ctx, ColTeamMembers, data)
}

func (r *teamRepository) DeleteMembership(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ColTeamMembers, id)
}
