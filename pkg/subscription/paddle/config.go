package paddle

// Environments accepted by Config.Environment.
const (
	EnvironmentProduction = "production"
	EnvironmentSandbox    = "sandbox"
)

// Config holds configuration for the Paddle provider.
type Config struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}
