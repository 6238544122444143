package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port              string `env:"PORT" envDefault:"8080"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID,required"`
	CronSecret        string `env:"CRON_SECRET,required"`
	// SnapshotCron is an optional cron expression (e.g. "5 0 * * *") that runs
	// the daily snapshot in-process in addition to the /api/cron/snapshot hook.
	SnapshotCron        string `env:"SNAPSHOT_CRON"`
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"vercel.app"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
