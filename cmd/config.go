package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// RedisURL selects the redis cache; empty means an in-process cache.
	RedisURL string

	// ETAOracleURL is the base URL of the prediction service; empty means fallback only.
	ETAOracleURL      string
	ETAInitialTimeout time.Duration
	ETAUpdateTimeout  time.Duration

	// SubscriberBuffer is the number of pending event batches per live connection.
	SubscriberBuffer int

	AnalyticsRefreshSchedule string
}
