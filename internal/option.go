package internal

// Option configures the application before Run starts it.
type Option func(*application)

// application collects everything Run needs. More fields (custom logger,
// prebuilt storage) can be added without changing the Run signature.
type application struct {
	config *Config
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
