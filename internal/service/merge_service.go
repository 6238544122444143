package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

// Match scores, highest first: exact email, exact name, name prefix, name
// substring.
const (
	scoreEmail       = 100
	scoreNameExact   = 90
	scoreNamePrefix  = 70
	scoreNamePartial = 50
)

type MatchAccount struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	GreenPoints int64  `json:"greenPoints"`
}

type Match struct {
	MatchType     string       `json:"matchType"`
	MatchScore    int          `json:"matchScore"`
	ZeroAccount   MatchAccount `json:"zeroAccount"`
	SourceAccount MatchAccount `json:"sourceAccount"`
}

type DuplicateEmail struct {
	Email string         `json:"email"`
	Count int            `json:"count"`
	Users []MatchAccount `json:"users"`
}

type MergeScan struct {
	TotalUsers        int              `json:"totalUsers"`
	ZeroPointAccounts int              `json:"zeroPointAccounts"`
	SourceAccounts    int              `json:"sourceAccounts"`
	MatchesFound      int              `json:"matchesFound"`
	Matches           []Match          `json:"matches"`
	DuplicateEmails   int              `json:"duplicateEmails"`
	Duplicates        []DuplicateEmail `json:"duplicates"`
}

type MergePair struct {
	NewUID string `json:"newUid"`
	OldUID string `json:"oldUid"`
	Email  string `json:"email"`
}

type MergeOutcome struct {
	NewUID      string `json:"newUid"`
	OldUID      string `json:"oldUid"`
	GreenPoints int64  `json:"greenPoints"`
}

type MergePairResult struct {
	Email       string `json:"email,omitempty"`
	Success     bool   `json:"success,omitempty"`
	GreenPoints int64  `json:"greenPoints,omitempty"`
	Error       string `json:"error,omitempty"`
}

type MergeBulkResult struct {
	SuccessCount int               `json:"successCount"`
	ErrorCount   int               `json:"errorCount"`
	Results      []MergePairResult `json:"results"`
}

type MergeService interface {
	// Scan partitions users into zero-balance targets and positive-balance
	// sources and reports greedy first-match candidates plus duplicate-email
	// groups. Read-only.
	Scan(ctx context.Context) (*MergeScan, error)
	// MergePair migrates oldUID's data into newUID across users,
	// team_members and points_snapshots, then deletes the source. The steps
	// are independent writes: a crash mid-way leaves partial state, with the
	// restore tool as the recovery path.
	MergePair(ctx context.Context, newUID, oldUID string) (*MergeOutcome, error)
	MergeAll(ctx context.Context, pairs []MergePair) (*MergeBulkResult, error)
}

type mergeService struct {
	users     repository.UserRepository
	teams     repository.TeamRepository
	snapshots repository.SnapshotRepository
	progress  repository.ProgressRepository
}

func NewMergeService(users repository.UserRepository, teams repository.TeamRepository, snapshots repository.SnapshotRepository, progress repository.ProgressRepository) MergeService {
	return &mergeService{users: users, teams: teams, snapshots: snapshots, progress: progress}
}

func (s *mergeService) Scan(ctx context.Context) (*MergeScan, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var zero, source []model.User
	for _, u := range users {
		if u.GreenPoints > 0 {
			source = append(source, u)
		} else {
			zero = append(zero, u)
		}
	}

	matches := matchAccounts(zero, source)
	dups := duplicateEmails(users)

	return &MergeScan{
		TotalUsers:        len(users),
		ZeroPointAccounts: len(zero),
		SourceAccounts:    len(source),
		MatchesFound:      len(matches),
		Matches:           matches,
		DuplicateEmails:   len(dups),
		Duplicates:        dups,
	}, nil
}

// matchAccounts pairs zero-balance accounts with not-yet-consumed source
// accounts. The policy is deliberately greedy and order dependent: the first
// zero account to match a source wins, and each zero account takes the first
// source that matches in iteration order. Results sort by descending score.
func matchAccounts(zero, source []model.User) []Match {
	matches := []Match{}
	consumed := make(map[string]bool)

	for _, z := range zero {
		zEmail := normalizeKey(z.Email)
		zName := normalizeKey(z.DisplayName)

		for _, src := range source {
			if consumed[src.UID] || src.UID == z.UID {
				continue
			}
			sEmail := normalizeKey(src.Email)
			sName := normalizeKey(src.DisplayName)

			matchType := ""
			matchScore := 0
			switch {
			case zEmail != "" && sEmail != "" && zEmail == sEmail:
				matchType, matchScore = "email", scoreEmail
			case zName != "" && sName != "" && zName == sName && len(zName) > 3:
				matchType, matchScore = "name_exact", scoreNameExact
			case zName != "" && sName != "" && len(zName) > 5 && len(sName) > 5:
				if strings.HasPrefix(zName, sName) || strings.HasPrefix(sName, zName) {
					matchType, matchScore = "name_similar", scoreNamePrefix
				} else if strings.Contains(zName, sName) || strings.Contains(sName, zName) {
					matchType, matchScore = "name_partial", scoreNamePartial
				}
			}
			if matchType == "" {
				continue
			}

			matches = append(matches, Match{
				MatchType:     matchType,
				MatchScore:    matchScore,
				ZeroAccount:   toMatchAccount(z),
				SourceAccount: toMatchAccount(src),
			})
			consumed[src.UID] = true
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches
}

func duplicateEmails(users []model.User) []DuplicateEmail {
	byEmail := make(map[string][]model.User)
	var order []string
	for _, u := range users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			continue
		}
		if _, ok := byEmail[email]; !ok {
			order = append(order, email)
		}
		byEmail[email] = append(byEmail[email], u)
	}

	var dups []DuplicateEmail
	for _, email := range order {
		group := byEmail[email]
		if len(group) < 2 {
			continue
		}
		d := DuplicateEmail{Email: email, Count: len(group)}
		for _, u := range group {
			d.Users = append(d.Users, toMatchAccount(u))
		}
		dups = append(dups, d)
	}
	return dups
}

func toMatchAccount(u model.User) MatchAccount {
	return MatchAccount{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		GreenPoints: u.GreenPoints,
	}
}

func (s *mergeService) MergePair(ctx context.Context, newUID, oldUID string) (*MergeOutcome, error) {
	if newUID == "" || oldUID == "" {
		return nil, ErrInvalidPayload
	}

	oldData, err := s.users.GetDoc(ctx, oldUID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}
	newData, err := s.users.GetDoc(ctx, newUID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		newData = map[string]any{}
	}

	// Archive the source document before it is overwritten or deleted so the
	// restore tool has something to recover from.
	if err := s.progress.SetBackupMerge(ctx, oldUID, oldData); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(oldData)+len(newData))
	for k, v := range oldData {
		merged[k] = v
	}
	for k, v := range newData {
		merged[k] = v
	}
	merged["uid"] = newUID
	merged["greenPoints"] = maxInt(model.Int(oldData["greenPoints"]), model.Int(newData["greenPoints"]))
	merged["displayName"] = firstNonEmpty(model.Str(newData["displayName"]), model.Str(oldData["displayName"]))
	merged["photoURL"] = firstNonEmpty(model.Str(newData["photoURL"]), model.Str(oldData["photoURL"]))
	merged["originalUid"] = oldUID
	merged["mergedAt"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.users.Set(ctx, newUID, merged); err != nil {
		return nil, err
	}

	// Re-point memberships: add under a fresh id unless the target already
	// belongs to the team, then drop the source membership regardless.
	memberships, err := s.teams.ListMembershipDocsByUser(ctx, oldUID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		teamID := model.Str(m.Data["teamId"])
		exists, err := s.teams.MembershipExists(ctx, newUID, teamID)
		if err != nil {
			return nil, err
		}
		if !exists {
			data := make(map[string]any, len(m.Data))
			for k, v := range m.Data {
				data[k] = v
			}
			data["userId"] = newUID
			if _, err := s.teams.AddMembership(ctx, data); err != nil {
				return nil, err
			}
		}
		if err := s.teams.DeleteMembership(ctx, m.ID); err != nil {
			return nil, err
		}
	}

	// Re-key snapshots to {newUid}_{date}: copy then delete.
	snaps, err := s.snapshots.ListDocsByUser(ctx, oldUID)
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		data := make(map[string]any, len(snap.Data))
		for k, v := range snap.Data {
			data[k] = v
		}
		data["userId"] = newUID
		newID := model.SnapshotID(newUID, model.Str(snap.Data["date"]))
		if err := s.snapshots.SetDoc(ctx, newID, data); err != nil {
			return nil, err
		}
		if err := s.snapshots.Delete(ctx, snap.ID); err != nil {
			return nil, err
		}
	}

	if err := s.users.Delete(ctx, oldUID); err != nil {
		return nil, err
	}

	return &MergeOutcome{
		NewUID:      newUID,
		OldUID:      oldUID,
		GreenPoints: model.Int(merged["greenPoints"]),
	}, nil
}

func (s *mergeService) MergeAll(ctx context.Context, pairs []MergePair) (*MergeBulkResult, error) {
	if len(pairs) == 0 {
		return nil, ErrInvalidPayload
	}
	res := &MergeBulkResult{Results: make([]MergePairResult, 0, len(pairs))}
	for _, pair := range pairs {
		outcome, err := s.MergePair(ctx, pair.NewUID, pair.OldUID)
		if err != nil {
			res.Results = append(res.Results, MergePairResult{Email: pair.Email, Error: err.Error()})
			res.ErrorCount++
			continue
		}
		res.Results = append(res.Results, MergePairResult{
			Email:       pair.Email,
			Success:     true,
			GreenPoints: outcome.GreenPoints,
		})
		res.SuccessCount++
	}
	return res, nil
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
