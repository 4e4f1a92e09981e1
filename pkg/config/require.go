package config

import (
	"fmt"
	"log"
	"strings"
)

// Requirement pairs an env name with the loaded value it must provide.
type Requirement struct {
	Env   string
	Value string
}

func Need(env, value string) Requirement {
	return Requirement{Env: env, Value: value}
}

func NeedBytes(env string, value []byte) Requirement {
	return Requirement{Env: env, Value: string(value)}
}

// NeedUserResolution is required by every service that authenticates users,
// so tokens of deleted accounts are refused.
func NeedUserResolution(c Config) []Requirement {
	return []Requirement{
		Need("AUTH_URL", c.AuthHTTPURL),
		Need("INTERNAL_TOKEN", c.InternalToken),
	}
}

// Require reports every missing value at once.
func Require(reqs ...Requirement) error {
	var missing []string
	for _, r := range reqs {
		if strings.TrimSpace(r.Value) == "" {
			missing = append(missing, r.Env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}
	return nil
}

func MustRequire(reqs ...Requirement) {
	if err := Require(reqs...); err != nil {
		log.Fatal(err)
	}
}
