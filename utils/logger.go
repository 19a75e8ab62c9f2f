package utils

import (
	"log"
	"os"
)

// InitLogger returns the application logger used by main and the request
// logging middleware.
func InitLogger() *log.Logger {
	return log.New(os.Stdout, "[IHYA] ", log.LstdFlags|log.LUTC)
}
