// Package config хранит параметры запуска сервиса.
//
// Значения берутся по возрастанию приоритета: значения по умолчанию,
// файл конфигурации (-c или CONFIG), флаги командной строки, переменные окружения.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

var (
	FlagRunAddr     string
	FlagLogLevel    string
	FlagLogFile     string
	StoreBackend    string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	DatabaseDSN     string
	FileStoragePath string
	StoreAttempts   int
	StoreDelay      time.Duration
	StoreTimeout    time.Duration
	EnableHTTPS     bool
	TrustedSubnet   string
	ConfigFile      string
)

// option связывает флаг с ключом файла конфигурации и переменной окружения.
type option struct {
	flag string
	key  string
	env  string
}

var options = []option{
	{flag: "a", key: "server_address", env: "SERVER_ADDRESS"},
	{flag: "l", key: "log_level", env: "LOG_LEVEL"},
	{flag: "log", key: "log_file", env: "LOG_FILE"},
	{flag: "store", key: "store", env: "STORE_BACKEND"},
	{flag: "r", key: "redis_address", env: "REDIS_ADDRESS"},
	{flag: "redis-password", key: "redis_password", env: "REDIS_PASSWORD"},
	{flag: "redis-db", key: "redis_db", env: "REDIS_DB"},
	{flag: "d", key: "database_dsn", env: "DATABASE_DSN"},
	{flag: "f", key: "file_storage_path", env: "FILE_STORAGE_PATH"},
	{flag: "attempts", key: "store_attempts", env: "STORE_ATTEMPTS"},
	{flag: "delay", key: "store_delay", env: "STORE_DELAY"},
	{flag: "timeout", key: "store_timeout", env: "STORE_TIMEOUT"},
	{flag: "s", key: "enable_https", env: "ENABLE_HTTPS"},
	{flag: "t", key: "trusted_subnet", env: "TRUSTED_SUBNET"},
}

// ParseFlags разбирает флаги командной строки, файл конфигурации и окружение.
func ParseFlags() error {
	return parseArgs(flag.CommandLine, os.Args[1:])
}

func parseArgs(fs *flag.FlagSet, args []string) error {
	fs.StringVar(&FlagRunAddr, "a", ":8080", "address and port to run server")
	fs.StringVar(&FlagLogLevel, "l", "info", "log level")
	fs.StringVar(&FlagLogFile, "log", "", "log file, stderr if empty")
	fs.StringVar(&StoreBackend, "store", "redis", "store backend: redis, postgres, memory or file")
	fs.StringVar(&RedisAddr, "r", "localhost:6379", "redis address")
	fs.StringVar(&RedisPassword, "redis-password", "", "redis password")
	fs.IntVar(&RedisDB, "redis-db", 0, "redis database number")
	fs.StringVar(&DatabaseDSN, "d", "", "database dsn")
	fs.StringVar(&FileStoragePath, "f", "store.jsonl", "file storage journal path")
	fs.IntVar(&StoreAttempts, "attempts", 100, "store reconnect attempts")
	fs.DurationVar(&StoreDelay, "delay", 10*time.Millisecond, "delay between store reconnect attempts")
	fs.DurationVar(&StoreTimeout, "timeout", time.Second, "store call timeout")
	fs.BoolVar(&EnableHTTPS, "s", false, "enable HTTPS")
	fs.StringVar(&TrustedSubnet, "t", "", "trusted subnet (CIDR) for /metrics")
	fs.StringVar(&ConfigFile, "c", "", "config file (yaml, json or toml)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if envConfig := os.Getenv("CONFIG"); envConfig != "" {
		ConfigFile = envConfig
	}
	if ConfigFile != "" {
		if err := loadFile(fs, ConfigFile, explicit); err != nil {
			return err
		}
	}

	for _, o := range options {
		value := os.Getenv(o.env)
		if value == "" {
			continue
		}
		if err := fs.Set(o.flag, value); err != nil {
			return fmt.Errorf("env %s: %w", o.env, err)
		}
	}
	return nil
}

// loadFile применяет значения из файла к флагам, не заданным явно.
func loadFile(fs *flag.FlagSet, path string, explicit map[string]bool) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	for _, o := range options {
		if explicit[o.flag] || !v.IsSet(o.key) {
			continue
		}
		if err := fs.Set(o.flag, v.GetString(o.key)); err != nil {
			return fmt.Errorf("config %s: key %s: %w", path, o.key, err)
		}
	}
	return nil
}
