package myconfig

import (
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the full process configuration. Gateway credentials stay
// server-side only and are never rendered into any page.
type Config struct {
	HTTP struct {
		Port string `env:"PORT" env-default:"8080"`
	}
	Gateway struct {
		BaseURL   string `env:"PIX_GATEWAY_BASE_URL" env-default:"https://api.novaera-pagamentos.com"`
		PublicKey string `env:"PIX_GATEWAY_PUBLIC_KEY"`
		SecretKey string `env:"PIX_GATEWAY_SECRET_KEY"`
	}
	AddressLookup struct {
		BaseURL string `env:"ADDRESS_LOOKUP_BASE_URL" env-default:"https://viacep.com.br"`
	}
	Pixel struct {
		ID string `env:"TRACKING_PIXEL_ID"`
	}
	Export struct {
		Dir string `env:"EXPORT_DIR" env-default:"exports"`
	}
	Payment struct {
		PollInterval time.Duration `env:"PAYMENT_POLL_INTERVAL" env-default:"5s"`
		PollCeiling  time.Duration `env:"PAYMENT_POLL_CEILING" env-default:"30m"`
	}
}

var (
	cfg  Config
	once sync.Once
)

// Get returns the singleton configuration instance.
func Get() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables only")
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("Error reading environment variables: %v", err)
		}
	})
	return &cfg
}
