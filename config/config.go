package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DBUrl         string
	SessionSecret string
	SessionTTL    time.Duration
	Debug         bool
}

func ParseFlags() (cfg Config, err error) {
	// flag defaults may come from the environment (or a local .env file)
	godotenv.Load()

	var host string
	flag.StringVar(&host, "host", envOr("HOST", "0.0.0.0"), "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", envUintOr("PORT", 8080), "listen port number (default 8080)")
	flag.StringVar(&cfg.DBUrl, "db-url", envOr("DB_URL", "sist_evaluacion.db"), "path to SQLite3 DB file (default sist_evaluacion.db)")
	flag.StringVar(&cfg.SessionSecret, "session-secret", os.Getenv("SESSION_SECRET"), "secret key for session token signing")
	var ttl uint
	flag.UintVar(&ttl, "session-ttl", envUintOr("SESSION_TTL", 3600), "session TTL in seconds (default 3600)")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.SessionTTL = time.Duration(ttl) * time.Second

	if cfg.SessionSecret == "" {
		err = errors.New("missing parameter -session-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUintOr(key string, fallback uint) uint {
	v, err := strconv.ParseUint(os.Getenv(key), 10, 32)
	if err != nil {
		return fallback
	}
	return uint(v)
}
