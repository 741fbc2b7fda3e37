package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	// LogFile, when set, receives a copy of the log stream (rotated).
	LogFile  string
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	PerfServiceURL     string
	PerfServiceTimeout time.Duration
	MaxN1WSURL         string
	MaxN1Reconnect     time.Duration
	PressureHPaStrict  bool

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool

	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string

	RateLimitRPS   float64
	RateLimitBurst int

	OpenBrowser bool
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	staticDir := strings.TrimSpace(os.Getenv("STATIC_DIR"))
	if staticDir == "" {
		staticDir = "static"
	}
	staticDir, err = filepath.Abs(staticDir)
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", staticDir, err)
	}

	perfURL := strings.TrimRight(strings.TrimSpace(os.Getenv("PERF_SERVICE_URL")), "/")
	if perfURL == "" {
		perfURL = "http://localhost:8000"
	}
	parsedPerfURL, err := url.Parse(perfURL)
	if err != nil || (parsedPerfURL.Scheme != "http" && parsedPerfURL.Scheme != "https") || parsedPerfURL.Host == "" {
		return Config{}, fmt.Errorf("invalid PERF_SERVICE_URL %q (expected http(s)://host[:port])", perfURL)
	}

	perfTimeout, err := durationFromEnv("PERF_SERVICE_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if perfTimeout <= 0 {
		return Config{}, fmt.Errorf("PERF_SERVICE_TIMEOUT must be positive, got %v", perfTimeout)
	}

	wsURL := strings.TrimSpace(os.Getenv("MAXN1_WS_URL"))
	if wsURL == "" {
		wsURL = deriveMaxN1URL(parsedPerfURL)
	} else if u, err := url.Parse(wsURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return Config{}, fmt.Errorf("invalid MAXN1_WS_URL %q (expected ws(s)://...)", wsURL)
	}

	reconnect, err := durationFromEnv("MAXN1_RECONNECT_INTERVAL", "5s")
	if err != nil {
		return Config{}, err
	}
	if reconnect <= 0 {
		return Config{}, fmt.Errorf("MAXN1_RECONNECT_INTERVAL must be positive, got %v", reconnect)
	}

	strict, err := boolFromEnv("PRESSURE_HPA_STRICT", false)
	if err != nil {
		return Config{}, err
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = ":memory:"
	}

	maxOpenConns, err := intFromEnv("DB_MAX_OPEN_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intFromEnv("DB_MAX_IDLE_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := durationFromEnv("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}
	logSQL, err := boolFromEnv("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	mqttPort, err := intFromEnv("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT out of range: %d", mqttPort)
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "cockpit-server"
	}
	mqttTopicPrefix := strings.Trim(strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX")), "/")
	if mqttTopicPrefix == "" {
		mqttTopicPrefix = "cockpit"
	}

	rpsStr := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS"))
	if rpsStr == "" {
		rpsStr = "5"
	}
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", rpsStr, err)
	}
	if rps <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", rps)
	}
	burst, err := intFromEnv("RATE_LIMIT_BURST", "10")
	if err != nil {
		return Config{}, err
	}
	if burst < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be >= 1, got %d", burst)
	}

	openBrowser, err := boolFromEnv("OPEN_BROWSER", false)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		LogFile:            strings.TrimSpace(os.Getenv("LOG_FILE")),
		HTTPAddr:           httpAddr,
		StaticDir:          staticDir,
		PerfServiceURL:     perfURL,
		PerfServiceTimeout: perfTimeout,
		MaxN1WSURL:         wsURL,
		MaxN1Reconnect:     reconnect,
		PressureHPaStrict:  strict,
		Driver:             driver,
		DSN:                dsn,
		Path:               path,
		MaxOpenConns:       maxOpenConns,
		MaxIdleConns:       maxIdleConns,
		ConnMaxLifetime:    connMaxLifetime,
		LogSQL:             logSQL,
		MQTTBroker:         mqttBroker,
		MQTTPort:           mqttPort,
		MQTTClientID:       mqttClientID,
		MQTTTopicPrefix:    mqttTopicPrefix,
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
		OpenBrowser:        openBrowser,
	}, nil
}

// deriveMaxN1URL maps http(s)://host to ws(s)://host/x-plane/max-n1-ws.
func deriveMaxN1URL(perf *url.URL) string {
	u := *perf
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/x-plane/max-n1-ws"
	return u.String()
}

func durationFromEnv(key, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func intFromEnv(key, def string) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func boolFromEnv(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
