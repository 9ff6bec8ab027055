package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	CORS        CORS

	DatabasePath string `env:"DATABASE_PATH" envDefault:"./orders.db"`

	Stripe Stripe `envPrefix:"STRIPE_"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY,required"`
	WebhookSecret string `env:"WEBHOOK_SECRET,required"`

	Currency         string   `env:"CURRENCY" envDefault:"dkk"`
	AllowedCountries []string `env:"ALLOWED_COUNTRIES" envDefault:"DK"`
	SuccessURL       string   `env:"SUCCESS_URL" envDefault:"http://localhost:3000/success.html?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL        string   `env:"CANCEL_URL" envDefault:"http://localhost:3000/cancel.html"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}
