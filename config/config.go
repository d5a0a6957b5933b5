package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type Config struct {
	Port        string
	DBDriver    string // postgres | sqlite
	DatabaseURL string
	SQLitePath  string

	Currency    string
	CallbackURL string

	RazorpayKeyID     string
	RazorpayKeySecret string

	SendGridAPIKey  string
	SendGridFrom    string
	SendGridSandbox bool

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	OpenAIAPIKey string
	OpenAIModel  string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	PDFDir         string

	CORSOrigins  []string
	OverdueCron  string
	DebugQueries bool
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("no .env file found, using process environment")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "rental.db"),

		Currency:    getEnv("CURRENCY", "INR"),
		CallbackURL: getEnv("PAYMENT_CALLBACK_URL", "http://localhost:8080/api/payments/razorpay/callback/"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:    getEnv("SENDGRID_FROM", "no-reply@rental.local"),
		SendGridSandbox: getBool("SENDGRID_SANDBOX", false),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		SupabaseBucket: getEnv("SUPABASE_BUCKET", "rental"),
		PDFDir:         getEnv("PDF_DIR", "./media/invoices"),

		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		OverdueCron:  getEnv("OVERDUE_CRON", "0 1 * * *"),
		DebugQueries: getBool("DB_DEBUG", false),
	}
}

// Open opens the configured database without migrating it.
func Open(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if !cfg.DebugQueries {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
				os.Getenv("DB_NAME"), getEnv("DB_PORT", "5432"))
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ConnectDB opens and migrates the database.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	utils.Logger.WithField("driver", cfg.DBDriver).Info("connected to database & migrated successfully")
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LogFields summarises which integrations are active.
func (c *Config) LogFields() logrus.Fields {
	return logrus.Fields{
		"db_driver": c.DBDriver,
		"razorpay":  c.RazorpayKeyID != "",
		"sendgrid":  c.SendGridAPIKey != "",
		"twilio":    c.TwilioAccountSID != "",
		"openai":    c.OpenAIAPIKey != "",
		"supabase":  c.SupabaseURL != "",
	}
}
