package pix

import "time"

// Config holds PIX payment provider configuration.
type Config struct {
	APIKey      string        `env:"PIX_API_KEY,required"`
	BaseURL     string        `env:"PIX_BASE_URL" envDefault:"https://api.abacatepay.com/v1"`
	Timeout     time.Duration `env:"PIX_HTTP_TIMEOUT" envDefault:"15s"`
	Environment string        `env:"PIX_ENVIRONMENT" envDefault:"production"`
}
