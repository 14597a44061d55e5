package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	HTTPPort  int
	MaxConns  int
	JWTSecret string

	// SchedulePolicy is an optional path to a YAML file overriding the
	// scheduling tunables (daily cap, energy table, ...).
	SchedulePolicy string
	TraceEnabled   bool
}

func Load() *Config {

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432 // fallback
	}

	httpPort, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		httpPort = 8080
	}

	maxConns, err := strconv.Atoi(os.Getenv("MAX_CONNS"))
	if err != nil {
		maxConns = 256
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "SUPER_SECRET_KEY_CHANGE_ME"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		HTTPPort:  httpPort,
		MaxConns:  maxConns,
		JWTSecret: secret,

		SchedulePolicy: os.Getenv("SCHEDULE_POLICY"),
		TraceEnabled:   os.Getenv("TRACE") == "1",
	}
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
