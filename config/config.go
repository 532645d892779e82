package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Load fills cfg from the environment, reading .env first outside production.
func Load(cfg any) {
	env := os.Getenv("ENV")
	if env != "production" && env != "prod" {
		err := godotenv.Load(".env")
		if err != nil {
			log.Debugf("no .env file loaded: %v", err)
		}
	}
	err := envconfig.Process("", cfg)
	if err != nil {
		log.Fatal(err)
	}
}
