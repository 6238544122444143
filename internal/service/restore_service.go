package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/repository"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type RecoveryInfo struct {
	CurrentUID          string `json:"currentUid"`
	OriginalUID         string `json:"originalUid"`
	Email               string `json:"email"`
	DisplayName         string `json:"displayName"`
	GreenPoints         int64  `json:"greenPoints"`
	MergedAt            string `json:"mergedAt"`
	HasOldSnapshots     bool   `json:"hasOldSnapshots"`
	OldSnapshotsCount   int    `json:"oldSnapshotsCount"`
	HasOldFarm          bool   `json:"hasOldFarm"`
	OldFarmTrees        int    `json:"oldFarmTrees"`
	HasOldAchievements  bool   `json:"hasOldAchievements"`
	OldAchievementCount int    `json:"oldAchievementsCount"`
}

type RecoverySummary struct {
	UsersWithOldSnapshots    int `json:"usersWithOldSnapshots"`
	UsersWithOldFarm         int `json:"usersWithOldFarm"`
	UsersWithOldAchievements int `json:"usersWithOldAchievements"`
}

type RestoreInventory struct {
	TotalMergedUsers int             `json:"totalMergedUsers"`
	RecoveryInfo     []RecoveryInfo  `json:"recoveryInfo"`
	Summary          RecoverySummary `json:"summary"`
}

type RestoreOutcome struct {
	UserID      string   `json:"userId"`
	OriginalUID string   `json:"originalUid"`
	Restored    []string `json:"restored"`
}

type RestoreUserResult struct {
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	Restored []string `json:"restored,omitempty"`
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
}

type RestoreBulkResult struct {
	SuccessCount int                 `json:"successCount"`
	ErrorCount   int                 `json:"errorCount"`
	Results      []RestoreUserResult `json:"results"`
}

type RestoreService interface {
	// Inventory lists merged identities (originalUid set) with flags for
	// what the archived source still holds.
	Inventory(ctx context.Context) (*RestoreInventory, error)
	// RestoreUser copies farm state, achievements and mission progress back
	// from the archived source identity, with merge-semantics writes only,
	// so newer target-side progress is never destroyed.
	RestoreUser(ctx context.Context, userID string) (*RestoreOutcome, error)
	RestoreAll(ctx context.Context) (*RestoreBulkResult, error)
}

type restoreService struct {
	users     repository.UserRepository
	snapshots repository.SnapshotRepository
	progress  repository.ProgressRepository
}

func NewRestoreService(users repository.UserRepository, snapshots repository.SnapshotRepository, progress repository.ProgressRepository) RestoreService {
	return &restoreService{users: users, snapshots: snapshots, progress: progress}
}

func (s *restoreService) Inventory(ctx context.Context) (*RestoreInventory, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	farms, err := s.progress.ListFarms(ctx)
	if err != nil {
		return nil, err
	}
	farmByUser := make(map[string]store.Doc, len(farms))
	for _, f := range farms {
		key := model.Str(f.Data["userId"])
		if key == "" {
			key = f.ID
		}
		farmByUser[key] = f
	}

	achievements, err := s.progress.ListAllAchievements(ctx)
	if err != nil {
		return nil, err
	}
	achCountByUser := make(map[string]int)
	for _, a := range achievements {
		achCountByUser[model.Str(a.Data["userId"])]++
	}

	inv := &RestoreInventory{RecoveryInfo: []RecoveryInfo{}}
	for _, u := range users {
		if u.OriginalUID == "" {
			continue
		}
		inv.TotalMergedUsers++

		snaps, err := s.snapshots.ListDocsByUser(ctx, u.OriginalUID)
		if err != nil {
			return nil, err
		}

		info := RecoveryInfo{
			CurrentUID:          u.UID,
			OriginalUID:         u.OriginalUID,
			Email:               u.Email,
			DisplayName:         u.DisplayName,
			GreenPoints:         u.GreenPoints,
			MergedAt:            u.MergedAt,
			HasOldSnapshots:     len(snaps) > 0,
			OldSnapshotsCount:   len(snaps),
			HasOldAchievements:  achCountByUser[u.OriginalUID] > 0,
			OldAchievementCount: achCountByUser[u.OriginalUID],
		}
		if farm, ok := farmByUser[u.OriginalUID]; ok {
			info.HasOldFarm = true
			info.OldFarmTrees = len(asSlice(farm.Data["trees"]))
		}
		inv.RecoveryInfo = append(inv.RecoveryInfo, info)

		if info.HasOldSnapshots {
			inv.Summary.UsersWithOldSnapshots++
		}
		if info.HasOldFarm {
			inv.Summary.UsersWithOldFarm++
		}
		if info.HasOldAchievements {
			inv.Summary.UsersWithOldAchievements++
		}
	}
	return inv, nil
}

func (s *restoreService) RestoreUser(ctx context.Context, userID string) (*RestoreOutcome, error) {
	if userID == "" {
		return nil, ErrInvalidPayload
	}

	userData, err := s.users.GetDoc(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	originalUID := model.Str(userData["originalUid"])
	if originalUID == "" {
		return nil, ErrNotMerged
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var restored []string

	// Farm state: prefer whichever side has the longer trees list.
	oldFarm, err := s.progress.GetFarm(ctx, originalUID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		newFarm, err := s.progress.GetFarm(ctx, userID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			newFarm = map[string]any{}
		}
		merged := make(map[string]any, len(oldFarm))
		for k, v := range oldFarm {
			merged[k] = v
		}
		oldTrees := asSlice(oldFarm["trees"])
		newTrees := asSlice(newFarm["trees"])
		if len(newTrees) >= len(oldTrees) && newTrees != nil {
			merged["trees"] = newTrees
		}
		merged["userId"] = userID
		merged["restoredAt"] = now
		merged["restoredFrom"] = originalUID
		if err := s.progress.SetFarmMerge(ctx, userID, merged); err != nil {
			return nil, err
		}
		restored = append(restored, "farm")
	}

	// Achievements, re-keyed onto the surviving identity.
	achs, err := s.progress.ListAchievementsByUser(ctx, originalUID)
	if err != nil {
		return nil, err
	}
	for _, a := range achs {
		data := make(map[string]any, len(a.Data))
		for k, v := range a.Data {
			data[k] = v
		}
		data["userId"] = userID
		data["restoredAt"] = now
		id := userID + "_" + model.Str(a.Data["achievementId"])
		if err := s.progress.SetAchievementMerge(ctx, id, data); err != nil {
			return nil, err
		}
	}
	if len(achs) > 0 {
		restored = append(restored, fmt.Sprintf("achievements (%d)", len(achs)))
	}

	// Mission progress, same scheme.
	missions, err := s.progress.ListMissionsByUser(ctx, originalUID)
	if err != nil {
		return nil, err
	}
	for _, m := range missions {
		data := make(map[string]any, len(m.Data))
		for k, v := range m.Data {
			data[k] = v
		}
		data["userId"] = userID
		data["restoredAt"] = now
		id := userID + "_" + model.Str(m.Data["missionId"])
		if err := s.progress.SetMissionMerge(ctx, id, data); err != nil {
			return nil, err
		}
	}
	if len(missions) > 0 {
		restored = append(restored, fmt.Sprintf("missions (%d)", len(missions)))
	}

	// Scalars from the pre-merge backup, never lowering current progress.
	backup, err := s.progress.GetBackup(ctx, originalUID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		patch := map[string]any{
			"totalTreesPlanted": maxInt(model.Int(backup["totalTreesPlanted"]), model.Int(userData["totalTreesPlanted"])),
			"streak":            maxInt(model.Int(backup["streak"]), model.Int(userData["streak"])),
			"restoredAt":        now,
		}
		if tp, ok := backup["treesProgress"]; ok {
			patch["treesProgress"] = tp
		} else if tp, ok := userData["treesProgress"]; ok {
			patch["treesProgress"] = tp
		}
		if err := s.users.SetMerge(ctx, userID, patch); err != nil {
			return nil, err
		}
		restored = append(restored, "user_profile_backup")
	}

	return &RestoreOutcome{UserID: userID, OriginalUID: originalUID, Restored: restored}, nil
}

func (s *restoreService) RestoreAll(ctx context.Context) (*RestoreBulkResult, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := &RestoreBulkResult{Results: []RestoreUserResult{}}
	for _, u := range users {
		if u.OriginalUID == "" {
			continue
		}
		outcome, err := s.RestoreUser(ctx, u.UID)
		if err != nil {
			res.Results = append(res.Results, RestoreUserResult{
				UserID: u.UID,
				Email:  u.Email,
				Error:  err.Error(),
			})
			res.ErrorCount++
			continue
		}
		res.Results = append(res.Results, RestoreUserResult{
			UserID:   u.UID,
			Email:    u.Email,
			Restored: outcome.Restored,
			Success:  true,
		})
		res.SuccessCount++
	}
	return res, nil
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
