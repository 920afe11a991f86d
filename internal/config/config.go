package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Port string }
type DBCfg struct{ DSN string }
type RedisCfg struct{ Addr string }

// SepayCfg holds everything needed to talk to the SePay aggregator and to
// render the bank-transfer QR payload.
type SepayCfg struct {
	BaseURL       string
	APIKey        string
	BankCode      string
	AccountNumber string
	AccountName   string
	QRImageBase   string

	// TransferPrefix is prepended to the order code to form the transfer
	// narrative the customer copies into their banking app.
	TransferPrefix string

	HTTPTimeout time.Duration
	ListLimit   int
}

type PaymentCfg struct {
	// MinAmount is the smallest accepted amount in minor currency units.
	MinAmount int64
}

type ReconcileCfg struct {
	PollInterval time.Duration
	PollBatch    int
}

type Cfg struct {
	App       AppCfg
	DB        DBCfg
	Redis     RedisCfg
	Sepay     SepayCfg
	Payment   PaymentCfg
	Reconcile ReconcileCfg
}

func Load() Cfg {
	// .env is optional; real deployments set process env directly.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("SEPAY_BASE_URL", "https://my.sepay.vn/userapi")
	viper.SetDefault("SEPAY_BANK_CODE", "TPBANK")
	viper.SetDefault("SEPAY_QR_IMAGE_BASE", "https://img.vietqr.io/image")
	viper.SetDefault("SEPAY_TRANSFER_PREFIX", "TT ")
	viper.SetDefault("SEPAY_HTTP_TIMEOUT_SEC", 30)
	viper.SetDefault("SEPAY_LIST_LIMIT", 50)
	viper.SetDefault("PAYMENT_MIN_AMOUNT", 1000)
	viper.SetDefault("RECONCILE_POLL_INTERVAL_SEC", 30)
	viper.SetDefault("RECONCILE_POLL_BATCH", 20)

	cfg := Cfg{
		App: AppCfg{
			Env:  viper.GetString("APP_ENV"),
			Port: viper.GetString("APP_PORT"),
		},
		DB:    DBCfg{DSN: viper.GetString("DB_DSN")},
		Redis: RedisCfg{Addr: viper.GetString("REDIS_ADDR")},
		Sepay: SepayCfg{
			BaseURL:        viper.GetString("SEPAY_BASE_URL"),
			APIKey:         viper.GetString("SEPAY_API_KEY"),
			BankCode:       viper.GetString("SEPAY_BANK_CODE"),
			AccountNumber:  viper.GetString("SEPAY_ACCOUNT_NUMBER"),
			AccountName:    viper.GetString("SEPAY_ACCOUNT_NAME"),
			QRImageBase:    viper.GetString("SEPAY_QR_IMAGE_BASE"),
			TransferPrefix: viper.GetString("SEPAY_TRANSFER_PREFIX"),
			HTTPTimeout:    time.Duration(viper.GetInt("SEPAY_HTTP_TIMEOUT_SEC")) * time.Second,
			ListLimit:      viper.GetInt("SEPAY_LIST_LIMIT"),
		},
		Payment: PaymentCfg{
			MinAmount: viper.GetInt64("PAYMENT_MIN_AMOUNT"),
		},
		Reconcile: ReconcileCfg{
			PollInterval: time.Duration(viper.GetInt("RECONCILE_POLL_INTERVAL_SEC")) * time.Second,
			PollBatch:    viper.GetInt("RECONCILE_POLL_BATCH"),
		},
	}

	// Fail fast on required settings.
	if cfg.DB.DSN == "" {
		log.Fatal().Msg("DB_DSN is required")
	}
	if cfg.Sepay.AccountNumber == "" {
		log.Fatal().Msg("SEPAY_ACCOUNT_NUMBER is required")
	}
	if cfg.Sepay.APIKey == "" {
		log.Warn().Msg("SEPAY_API_KEY not set; polling fallback disabled")
	}

	return cfg
}
