package common

import (
	"log"
	"os"
)

var (
	logger = log.New(os.Stderr, "[pdbgate] ", log.LstdFlags|log.Lmicroseconds)
)

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}
