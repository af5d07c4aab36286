package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   chain endpoint, signing key) and security settings
// - default: Values common across all environments (window size, timeouts,
//   well-known contract constants)
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	CORS   CORSConfig
	Log    LogConfig
	Chain  ChainConfig
	Sync   SyncConfig
	Auth   AuthConfig
	Admin  AdminConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Admin-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// ChainConfig describes the target chain, the dev-hours contract and the
// voucher signing key. The deployment block is the hard floor for event sync.
type ChainConfig struct {
	RPCURL           string        `envconfig:"CHAIN_RPC_URL" required:"true"`
	ChainID          int64         `envconfig:"CHAIN_ID" default:"8453"`
	ContractAddress  string        `envconfig:"CONTRACT_ADDRESS" required:"true"`
	USDCAddress      string        `envconfig:"USDC_ADDRESS" default:"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
	DeploymentBlock  uint64        `envconfig:"CONTRACT_DEPLOYMENT_BLOCK" default:"31663307"`
	RPCTimeout       time.Duration `envconfig:"CHAIN_RPC_TIMEOUT" default:"15s"`
	SignerPrivateKey string        `envconfig:"SIGNER_PRIVATE_KEY" required:"true"`
}

type SyncConfig struct {
	WindowSize uint64        `envconfig:"SYNC_WINDOW_SIZE" default:"2000"`
	Interval   time.Duration `envconfig:"SYNC_INTERVAL" default:"5m"`
	Enabled    bool          `envconfig:"SYNC_ENABLED" default:"true"`
}

type AuthConfig struct {
	JWKSURL       string  `envconfig:"QUICK_AUTH_JWKS_URL" default:"https://auth.farcaster.xyz/.well-known/jwks.json"`
	Domain        string  `envconfig:"QUICK_AUTH_DOMAIN" required:"true"`
	NeynarAPIKey  string  `envconfig:"NEYNAR_API_KEY" required:"true"`
	NeynarBaseURL string  `envconfig:"NEYNAR_API_BASE" default:"https://api.neynar.com/v2"`
	OomfieFID     int64   `envconfig:"OOMFIE_FID" default:"977233"`
	OGBidderFIDs  []int64 `envconfig:"OG_BIDDER_FIDS" default:"1237,2745,11528"`
	DevMode       bool    `envconfig:"DEV_MODE" default:"false"`
}

type AdminConfig struct {
	Key string `envconfig:"ADMIN_KEY" required:"true"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Chain: ChainConfig{
			RPCURL:          "http://127.0.0.1:8545",
			ChainID:         8453,
			ContractAddress: "0x0000000000000000000000000000000000000001",
			USDCAddress:     "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
			DeploymentBlock: 31663307,
			RPCTimeout:      5 * time.Second,
			// Well-known throwaway key, never funded
			SignerPrivateKey: "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		},
		Sync: SyncConfig{
			WindowSize: 2000,
			Interval:   5 * time.Minute,
			Enabled:    false,
		},
		Auth: AuthConfig{
			JWKSURL:       "http://127.0.0.1:18080/.well-known/jwks.json",
			Domain:        "test.example.com",
			NeynarAPIKey:  "test-api-key",
			NeynarBaseURL: "http://127.0.0.1:18081/v2",
			OomfieFID:     977233,
			OGBidderFIDs:  []int64{1237, 2745, 11528},
		},
		Admin: AdminConfig{
			Key: "test-admin-key",
		},
	}
}
