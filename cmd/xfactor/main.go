package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/c9s/xfactor/pkg/cmd"
)

func main() {
	for _, dotenvFile := range []string{".env.local", ".env"} {
		if _, err := os.Stat(dotenvFile); err == nil {
			if err := godotenv.Load(dotenvFile); err != nil {
				log.WithError(err).Errorf("error loading dotenv file %s", dotenvFile)
				return
			}
		}
	}

	cmd.Execute()
}
