package service

import (
	"context"
	"sort"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
)

type UserGrowth struct {
	UID             string `json:"uid"`
	Name            string `json:"name"`
	Avatar          string `json:"avatar"`
	Team            string `json:"team"`
	CurrentPoints   int64  `json:"currentPoints"`
	YesterdayPoints int64  `json:"yesterdayPoints"`
	Growth          int64  `json:"growth"`
}

type TeamMemberGrowth struct {
	UID             string `json:"uid"`
	Name            string `json:"name"`
	Avatar          string `json:"avatar"`
	CurrentPoints   int64  `json:"currentPoints"`
	YesterdayPoints int64  `json:"yesterdayPoints"`
	Growth          int64  `json:"growth"`
	Role            string `json:"role"`
}

type TeamGrowth struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	AvatarURL       string             `json:"avatarUrl"`
	MemberCount     int                `json:"memberCount"`
	TotalPoints     int64              `json:"totalPoints"`
	YesterdayPoints int64              `json:"yesterdayPoints"`
	Growth          int64              `json:"growth"`
	Members         []TeamMemberGrowth `json:"members"`
}

// GrowthService derives daily point deltas by diffing current balances
// against yesterday's snapshot. Full recomputation on every call; there is
// no incremental path.
type GrowthService interface {
	TopUsers(ctx context.Context, limit int) ([]model.User, error)
	UserGrowth(ctx context.Context) ([]UserGrowth, error)
	TeamGrowth(ctx context.Context) ([]TeamGrowth, error)
}

type growthService struct {
	users     repository.UserRepository
	teams     repository.TeamRepository
	snapshots repository.SnapshotRepository
	now       func() time.Time
}

func NewGrowthService(users repository.UserRepository, teams repository.TeamRepository, snapshots repository.SnapshotRepository) GrowthService {
	return &growthService{users: users, teams: teams, snapshots: snapshots, now: time.Now}
}

func (s *growthService) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.users.TopByPoints(ctx, limit)
}

func (s *growthService) UserGrowth(ctx context.Context) ([]UserGrowth, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	yesterdayMap, err := s.yesterdayPoints(ctx)
	if err != nil {
		return nil, err
	}

	teamNameByUser, err := s.teamNames(ctx)
	if err != nil {
		return nil, err
	}

	growth := make([]UserGrowth, 0, len(users))
	for _, u := range users {
		yesterday := yesterdayMap[u.UID]
		growth = append(growth, UserGrowth{
			UID:             u.UID,
			Name:            u.Name(),
			Avatar:          u.Avatar(),
			Team:            teamNameByUser[u.UID],
			CurrentPoints:   u.GreenPoints,
			YesterdayPoints: yesterday,
			Growth:          u.GreenPoints - yesterday,
		})
	}
	sort.SliceStable(growth, func(i, j int) bool { return growth[i].Growth > growth[j].Growth })
	return growth, nil
}

func (s *growthService) TeamGrowth(ctx context.Context) ([]TeamGrowth, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return []TeamGrowth{}, nil
	}

	yesterdayMap, err := s.yesterdayPoints(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byUID := make(map[string]model.User, len(users))
	for _, u := range users {
		byUID[u.UID] = u
	}

	result := make([]TeamGrowth, 0, len(teams))
	for _, team := range teams {
		members, err := s.teams.ListMembersByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}

		tg := TeamGrowth{
			ID:        team.ID,
			Name:      team.Name,
			AvatarURL: team.AvatarURL,
			Members:   []TeamMemberGrowth{},
		}
		for _, m := range members {
			u, ok := byUID[m.UserID]
			if !ok {
				continue
			}
			yesterday := yesterdayMap[u.UID]
			role := m.Role
			if role == "" {
				role = "member"
			}
			tg.TotalPoints += u.GreenPoints
			tg.YesterdayPoints += yesterday
			tg.Growth += u.GreenPoints - yesterday
			tg.Members = append(tg.Members, TeamMemberGrowth{
				UID:             u.UID,
				Name:            u.Name(),
				Avatar:          u.Avatar(),
				CurrentPoints:   u.GreenPoints,
				YesterdayPoints: yesterday,
				Growth:          u.GreenPoints - yesterday,
				Role:            role,
			})
		}
		sort.SliceStable(tg.Members, func(i, j int) bool { return tg.Members[i].Growth > tg.Members[j].Growth })

		tg.MemberCount = team.MemberCount
		if tg.MemberCount == 0 {
			tg.MemberCount = len(tg.Members)
		}
		result = append(result, tg)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Growth > result[j].Growth })
	return result, nil
}

// teamNames resolves each user's team label by walking team_members per team.
// A user on several teams keeps the first team seen.
func (s *growthService) teamNames(ctx context.Context) (map[string]string, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for _, team := range teams {
		members, err := s.teams.ListMembersByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if _, ok := names[m.UserID]; !ok {
				names[m.UserID] = team.Name
			}
		}
	}
	return names, nil
}

func (s *growthService) yesterdayPoints(ctx context.Context) (map[string]int64, error) {
	yesterday := s.now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	snaps, err := s.snapshots.ListByDate(ctx, yesterday)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(snaps))
	for _, snap := range snaps {
		m[snap.UserID] = snap.Points
	}
	return m, nil
}
