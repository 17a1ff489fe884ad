package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	StatusCache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"status_cache"`

	Checkout struct {
		PaymentWindow         time.Duration `koanf:"payment_window"`
		TransferCodeAttempts  int           `koanf:"transfer_code_attempts"`
		AutoConfirmZeroAmount bool          `koanf:"auto_confirm_zero_amount"`
		ExpirySweepInterval   time.Duration `koanf:"expiry_sweep_interval"`
	} `koanf:"checkout"`

	Download struct {
		TokenTTL time.Duration `koanf:"token_ttl"`
	} `koanf:"download"`

	Bank struct {
		BeneficiaryName    string        `koanf:"beneficiary_name"`
		BeneficiaryAccount string        `koanf:"beneficiary_account"`
		BankName           string        `koanf:"bank_name"`
		StatementURL       string        `koanf:"statement_url"`
		PollInterval       time.Duration `koanf:"poll_interval"`
		PollLookback       time.Duration `koanf:"poll_lookback"`
	} `koanf:"bank"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers           []string `koanf:"brokers"`
		ConfirmationTopic string   `koanf:"confirmation_topic"`
		GroupID           string   `koanf:"group_id"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret        string        `koanf:"jwt_secret"`
		Issuer           string        `koanf:"issuer"`
		Audience         string        `koanf:"audience"`
		TTL              time.Duration `koanf:"ttl"`
		WebhookKeyID     string        `koanf:"webhook_key_id"`
		WebhookRSAPubPEM string        `koanf:"webhook_rsa_pub_pem"`
		WebhookRSAPriPEM string        `koanf:"webhook_rsa_pri_pem"`
	} `koanf:"security"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix BOOKAPI_, nested with __)
	// e.g. BOOKAPI_MYSQL__DSN, BOOKAPI_REDIS__PASSWORD
	if err := k.Load(env.Provider("BOOKAPI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "BOOKAPI_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Checkout.PaymentWindow <= 0 {
		return fmt.Errorf("checkout.payment_window required")
	}
	if c.Download.TokenTTL <= 0 {
		return fmt.Errorf("download.token_ttl required")
	}
	if c.Bank.BeneficiaryAccount == "" {
		return fmt.Errorf("bank.beneficiary_account required")
	}
	return nil
}
