package remote

// Config holds configuration for the remote list service.
type Config struct {
	// BaseURL is the root URL of the remote reading-list and talk-page API.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:9090/api/v1"`
	// AuthToken is the bearer token attached to every request.
	AuthToken string `mapstructure:"auth_token" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RetryAttempts is the number of attempts per request (including the first).
	RetryAttempts int `mapstructure:"retry_attempts" default:"3"`
}
