package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	Deploy  DeployConfig
	Release ReleaseConfig
	Logging LoggingConfig
}

// DeployConfig describes the remote host and the directory layout the
// deployment works against.
type DeployConfig struct {
	ServerIP        string
	SSHPort         int
	SSHUsername     string
	SSHPassword     string
	DeployPath      string
	LocalBuildPath  string
	ConnectTimeout  time.Duration
	RestartServices []string
	KeepBackup      bool
}

// ReleaseConfig carries the bitbucket credentials and release metadata for
// the orchestrator.
type ReleaseConfig struct {
	Username    string
	AppPassword string
	Version     string
	Workspace   string
	WorkDir     string
	AuthorName  string
	AuthorEmail string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	return &Config{
		Deploy: DeployConfig{
			ServerIP:    getEnvAsString("SERVER_IP", ""),
			SSHPort:     getEnvAsInt("SSH_PORT", 22),
			SSHUsername: getEnvAsString("SSH_USERNAME", ""),
			SSHPassword: getEnvAsString("SSH_PASSWORD", ""),
			// A trailing slash would break the _temp/_backup suffixing.
			DeployPath:      strings.TrimRight(getEnvAsString("DEPLOY_PATH", ""), "/"),
			LocalBuildPath:  getEnvAsString("LOCAL_BUILD_PATH", "build"),
			ConnectTimeout:  time.Duration(getEnvAsInt("SSH_CONNECT_TIMEOUT", 30)) * time.Second,
			RestartServices: getEnvAsList("RESTART_SERVICES", []string{"nginx", "gunicorn"}),
			KeepBackup:      getEnvAsBool("DEPLOY_KEEP_BACKUP", false),
		},
		Release: ReleaseConfig{
			Username:    getEnvAsString("BITBUCKET_USERNAME", ""),
			AppPassword: getEnvAsString("BITBUCKET_APP_PASSWORD", ""),
			Version:     getEnvAsString("RELEASE_VERSION", ""),
			Workspace:   getEnvAsString("BITBUCKET_WORKSPACE", "sicunet1"),
			WorkDir:     getEnvAsString("RELEASE_WORK_DIR", "."),
			AuthorName:  getEnvAsString("RELEASE_AUTHOR_NAME", "Release Pipeline"),
			AuthorEmail: getEnvAsString("RELEASE_AUTHOR_EMAIL", "release@sicunet.com"),
		},
		Logging: LoggingConfig{
			Level:  getEnvAsString("LOG_LEVEL", "info"),
			Format: getEnvAsString("LOG_FORMAT", "json"),
		},
	}
}

// Validate reports the first missing or malformed deployment setting.
func (c DeployConfig) Validate() error {
	if c.ServerIP == "" {
		return errors.New("config: SERVER_IP is required")
	}
	if c.SSHUsername == "" {
		return errors.New("config: SSH_USERNAME is required")
	}
	if c.SSHPassword == "" {
		return errors.New("config: SSH_PASSWORD is required")
	}
	if c.DeployPath == "" {
		return errors.New("config: DEPLOY_PATH is required")
	}
	if c.SSHPort < 1 || c.SSHPort > 65535 {
		return errors.Errorf("config: SSH_PORT %d out of range", c.SSHPort)
	}
	return nil
}

// Validate reports the first missing release setting.
func (c ReleaseConfig) Validate() error {
	if c.Username == "" {
		return errors.New("config: BITBUCKET_USERNAME is required")
	}
	if c.AppPassword == "" {
		return errors.New("config: BITBUCKET_APP_PASSWORD is required")
	}
	if c.Version == "" {
		return errors.New("config: RELEASE_VERSION is required")
	}
	return nil
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
