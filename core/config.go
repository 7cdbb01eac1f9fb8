package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Debug    bool
	TestMode bool
	AppName  string
	Build    string

	// SecretKey only matters to the dev stub server, which signs its
	// own tokens; the real API keeps its own secret.
	SecretKey string

	API struct {
		BaseURL string
		Timeout time.Duration
	}

	// StatePath is the sqlite file holding the persisted client state
	// (auth session, statistics cache).
	StatePath string

	Scanner struct {
		CodeLength   int
		QuietTimeout time.Duration
	}

	RollbarToken string
}

// NewConfig loads the configuration from defaults, an optional
// config/.env.<env> file and prefixed environment variables
// (e.g. DEV_APIBASEURL).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Penilaian")
	v.SetDefault("build", "dev")
	v.SetDefault("apiBaseUrl", "http://localhost:8000/api")
	v.SetDefault("apiTimeout", 30*time.Second)
	v.SetDefault("statePath", filepath.Join(os.TempDir(), "penilaian-state.db"))
	v.SetDefault("scannerCodeLength", 10)
	v.SetDefault("scannerQuietTimeout", 500*time.Millisecond)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("secretKey", "k3d1r1-w(er)enb$+57=dz&u0xh2(h!x)#*c2(#yg4h^$cegm2")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	testMode := false
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     testMode,
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		StatePath:    v.GetString("statePath"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.API.BaseURL = strings.TrimRight(v.GetString("apiBaseUrl"), "/")
	conf.API.Timeout = v.GetDuration("apiTimeout")
	conf.Scanner.CodeLength = v.GetInt("scannerCodeLength")
	conf.Scanner.QuietTimeout = v.GetDuration("scannerQuietTimeout")
	return conf
}
