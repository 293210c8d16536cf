package config

import (
	"log"
	"os"
	"strings"
)

type Config struct {
	MySQLDSN       string
	RedisURL       string
	JWTSecret      string
	GeminiKey      string
	Port           string
	AllowedOrigins []string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	origins := []string{"http://localhost:3000"}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return Config{
		MySQLDSN:       getenv("MYSQL_DSN", "ideaforge:ideaforge@tcp(127.0.0.1:3306)/ideaforge?parseTime=true"),
		RedisURL:       getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"), // optional; relay reports Unconfigured without it
		Port:           getenv("PORT", "8080"),
		AllowedOrigins: origins,
	}
}
