package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cfg is filled by Load before the server starts serving.
var Cfg Config

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	OSS    OSSConfig    `yaml:"oss"`
	MQ     MQConfig     `yaml:"mq"`
	Model  ModelConfig  `yaml:"model"`
	JWT    JWTConfig    `yaml:"jwt"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type OSSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	BucketName      string `yaml:"bucket_name"`
}

type MQConfig struct {
	NameServer []string `yaml:"name_server"`
}

type ModelConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// Load reads the YAML config file and applies environment overrides for
// secrets. The path defaults to config/config.yaml and can be changed with
// CONFIG_PATH. A .env file in the working directory is picked up first.
func Load() error {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	if err := yaml.Unmarshal(data, &Cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	applyEnvOverrides()

	if Cfg.Server.Port == "" {
		Cfg.Server.Port = "8000"
	}
	if Cfg.DB.SSLMode == "" {
		Cfg.DB.SSLMode = "disable"
	}

	return nil
}

func applyEnvOverrides() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		Cfg.Model.APIKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		Cfg.DB.Password = v
	}
	if v := os.Getenv("OSS_ACCESS_KEY_ID"); v != "" {
		Cfg.OSS.AccessKeyID = v
	}
	if v := os.Getenv("OSS_ACCESS_KEY_SECRET"); v != "" {
		Cfg.OSS.AccessKeySecret = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		Cfg.JWT.SecretKey = v
	}
}
