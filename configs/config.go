package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	OnlyFansAPIBase    string
	FanslyAPIBase      string
	AIAPIBase          string
	AIAPIKey           string
	AIModel            string
	FunctionsURL       string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	R2                 R2
	SecretKey          string
	CookieName         string
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		OnlyFansAPIBase:    getEnv("ONLYFANS_API_BASE", "https://onlyfans.com/api2/v2"),
		FanslyAPIBase:      getEnv("FANSLY_API_BASE", "https://apiv3.fansly.com/api/v1"),
		AIAPIBase:          getEnv("AI_API_BASE", "https://openrouter.ai/api/v1"),
		AIAPIKey:           getEnv("AI_API_KEY", ""),
		AIModel:            getEnv("AI_MODEL", "mistralai/mistral-small-3.2-24b-instruct-2506:free"),
		FunctionsURL:       getEnv("FUNCTIONS_URL", ""),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", "127.0.0.1:6379"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "creatorhub_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
