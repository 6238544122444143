package model

import "time"

// Snapshot records a user's point balance on a given date. Documents are
// keyed {userId}_{YYYY-MM-DD} and merge-upserted by the daily job.
type Snapshot struct {
	ID        string    `mapstructure:"-"`
	UserID    string    `mapstructure:"userId"`
	Points    int64     `mapstructure:"points"`
	Date      string    `mapstructure:"date"`
	CreatedAt time.Time `mapstructure:"createdAt"`
}

// SnapshotID builds the composite document id for a user/date pair.
func SnapshotID(userID, date string) string {
	return userID + "_" + date
}
