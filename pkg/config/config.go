package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Load reads the optional dotenv files into the process environment and then
// decodes the environment into dst using its cleanenv tags.
func Load(dst any, envFiles ...string) error {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("notice: %s not found, using system environment variables", f)
				continue
			}
			return err
		}
	}
	return cleanenv.ReadEnv(dst)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
