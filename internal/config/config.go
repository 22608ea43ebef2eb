package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Environment string `yaml:"environment"` // "production" | "development"
	BaseURL     string `yaml:"base_url"`    // для ссылок сброса пароля
	AdminEmail  string `yaml:"admin_email"`
	JWTSecret   string `yaml:"jwt_secret"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	App      AppConfig `yaml:"app"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	Files    FilesConfig    `yaml:"files"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

// LoadConfig читает config/config.yaml и поверх накладывает переменные окружения
// (.env подхватывается через godotenv). Секреты в yaml держать не обязательно.
func LoadConfig() *Config {
	_ = godotenv.Load()

	var cfg Config
	if f, err := os.Open("config/config.yaml"); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			panic("Failed to parse config.yaml: " + err.Error())
		}
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Environment = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.App.BaseURL = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.App.AdminEmail = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.App.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:8080"
	}
	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	cfg.App.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.App.AdminEmail))
	return &cfg
}
