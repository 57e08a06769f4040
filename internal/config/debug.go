package config

import "os"

func IsDebug() bool {
	return os.Getenv("SHANNON_DEBUG") == "1"
}
