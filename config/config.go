package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AI        AIConfig
	Email     EmailConfig
	Captcha   CaptchaConfig
	RateLimit RateLimitConfig
	Content   ContentConfig
	OTP       OTPConfig
}

type AppConfig struct {
	Port        string
	Env         string
	AllowOrigin string
}

type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	RunMigrations bool
}

// RedisConfig with an empty Host falls back to the in-process store.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type AIConfig struct {
	GatewayURL string
	APIKey     string
	Model      string
	Timeout    time.Duration
}

type EmailConfig struct {
	APIURL       string
	APIKey       string
	From         string
	AdminAddress string
	Timeout      time.Duration
}

// CaptchaConfig with an empty Secret disables server-side verification.
type CaptchaConfig struct {
	Secret    string
	VerifyURL string
	MinScore  float64
}

type RateLimitConfig struct {
	ChatWindow   time.Duration
	ChatCapacity int
	CodeWindow   time.Duration
	CodeCapacity int

	// TrustedProxies are CIDRs or addresses whose X-Forwarded-For is believed
	TrustedProxies []string
}

type ContentConfig struct {
	CacheTTL time.Duration
}

type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// a missing .env is fine when everything comes from the environment
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Name:          viper.GetString("DB_NAME"),
			SSLMode:       viper.GetString("DB_SSLMODE"),
			RunMigrations: viper.GetBool("DB_RUN_MIGRATIONS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		AI: AIConfig{
			GatewayURL: viper.GetString("AI_GATEWAY_URL"),
			APIKey:     viper.GetString("AI_GATEWAY_API_KEY"),
			Model:      viper.GetString("AI_MODEL"),
			Timeout:    durationOr("AI_TIMEOUT", 2*time.Minute),
		},
		Email: EmailConfig{
			APIURL:       viper.GetString("EMAIL_API_URL"),
			APIKey:       viper.GetString("EMAIL_API_KEY"),
			From:         viper.GetString("EMAIL_FROM"),
			AdminAddress: viper.GetString("EMAIL_ADMIN_ADDRESS"),
			Timeout:      durationOr("EMAIL_TIMEOUT", 15*time.Second),
		},
		Captcha: CaptchaConfig{
			Secret:    viper.GetString("RECAPTCHA_SECRET"),
			VerifyURL: viper.GetString("RECAPTCHA_VERIFY_URL"),
			MinScore:  viper.GetFloat64("RECAPTCHA_MIN_SCORE"),
		},
		RateLimit: RateLimitConfig{
			ChatWindow:     durationOr("CHAT_RATE_LIMIT_WINDOW", time.Minute),
			ChatCapacity:   viper.GetInt("CHAT_RATE_LIMIT_CAPACITY"),
			CodeWindow:     durationOr("CODE_RATE_LIMIT_WINDOW", 15*time.Minute),
			CodeCapacity:   viper.GetInt("CODE_RATE_LIMIT_CAPACITY"),
			TrustedProxies: splitList(viper.GetString("TRUSTED_PROXIES")),
		},
		Content: ContentConfig{
			CacheTTL: durationOr("CONTENT_CACHE_TTL", 5*time.Minute),
		},
		OTP: OTPConfig{
			TTL:         durationOr("OTP_TTL", 5*time.Minute),
			MaxAttempts: viper.GetInt("OTP_MAX_ATTEMPTS"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_RUN_MIGRATIONS", true)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev")
	viper.SetDefault("AI_MODEL", "google/gemini-2.5-flash")
	viper.SetDefault("EMAIL_API_URL", "https://api.resend.com")
	viper.SetDefault("EMAIL_FROM", "SWASTH SATHI <onboarding@resend.dev>")
	viper.SetDefault("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify")
	viper.SetDefault("RECAPTCHA_MIN_SCORE", 0.5)
	viper.SetDefault("CHAT_RATE_LIMIT_CAPACITY", 20)
	viper.SetDefault("CODE_RATE_LIMIT_CAPACITY", 5)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return def
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
