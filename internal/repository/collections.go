package repository

// Collection names in the shared document store.
const (
	ColUsers        = "users"
	ColCards        = "cards"
	ColRedeems      = "redeems"
	ColSnapshots    = "points_snapshots"
	ColTeams        = "teams"
	ColTeamMembers  = "team_members"
	ColFarms        = "farms"
	ColAchievements = "user_achievements"
	ColMissions     = "user_missions"
	ColUsersBackup  = "users_backup"
)
