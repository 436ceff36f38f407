package app

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOPFRONT_ prefix), flags, or YAML config files.
type Config struct {
	StateDir string `default:"data" usage:"Directory holding the persisted state records" flag:"state-dir"`
	Carrier  string `default:"MockPost" usage:"Carrier name stamped on new shipments"`
	Payment  PaymentConfig
	Shipping ShippingConfig
}

// PaymentConfig controls the simulated payment processing step.
type PaymentConfig struct {
	Delay time.Duration `default:"800ms" usage:"Simulated payment processing delay"`
}

// ShippingConfig controls the simulated shipment progression timing.
type ShippingConfig struct {
	InitialDelay  time.Duration `default:"2s" usage:"Base delay before the first stage advancement" flag:"initial-delay"`
	InitialJitter time.Duration `default:"2s" usage:"Random jitter added to the first advancement delay" flag:"initial-jitter"`
	StageDelay    time.Duration `default:"2500ms" usage:"Base delay between stage advancements" flag:"stage-delay"`
	StageJitter   time.Duration `default:"3s" usage:"Random jitter added between stage advancements" flag:"stage-jitter"`
	ResumeDelay   time.Duration `default:"1s" usage:"Base delay before resuming an unfinished shipment" flag:"resume-delay"`
	ResumeJitter  time.Duration `default:"1s" usage:"Random jitter added to the resume delay" flag:"resume-jitter"`
}

// LoadConfig loads configuration from environment variables, flags, and
// YAML config files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOPFRONT",
		Files:     []string{"config.yaml", "/etc/shopfront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
