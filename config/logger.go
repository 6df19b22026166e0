package config

import (
	log "github.com/sirupsen/logrus"
)

func ConfigureLogging(cfg *Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	switch cfg.LogLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
