package model

// Team groups users for the leaderboard rollup.
type Team struct {
	ID          string `mapstructure:"-"`
	Name        string `mapstructure:"name"`
	AvatarURL   string `mapstructure:"avatarUrl"`
	MemberCount int    `mapstructure:"memberCount"`
}

// TeamMember links a user to a team.
type TeamMember struct {
	ID     string `mapstructure:"-"`
	UserID string `mapstructure:"userId"`
	TeamID string `mapstructure:"teamId"`
	Role   string `mapstructure:"role"`
}
