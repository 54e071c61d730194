package config

type AppConfig struct {
	APIPort           string `env:"PORT" envDefault:"11000"`
	APIKey            string `env:"API_KEY,required"`
	RabbitMQURL       string `env:"RABBITMQ_URL"`
	TrackingPublicUrl string `env:"TRACKING_PUBLIC_URL" envDefault:"http://localhost:11000"`
	DNSServer         string `env:"DNS_SERVER" envDefault:"8.8.8.8:53"`
}

type DatabaseConfig struct {
	Host            string `env:"WARMSTACK_POSTGRES_HOST,required"`
	Port            string `env:"WARMSTACK_POSTGRES_PORT,required"`
	User            string `env:"WARMSTACK_POSTGRES_USER,required"`
	DBName          string `env:"WARMSTACK_POSTGRES_DB_NAME,required"`
	Password        string `env:"WARMSTACK_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"WARMSTACK_POSTGRES_DB_MAX_CONN" envDefault:"50"`
	MaxIdleConn     int    `env:"WARMSTACK_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"WARMSTACK_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"WARMSTACK_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"WARMSTACK_POSTGRES_SSL_MODE" envDefault:"disable"`
}

type AIConfig struct {
	Provider string `env:"AI_PROVIDER"`
	ApiKey   string `env:"AI_API_KEY"`
	ApiUrl   string `env:"AI_API_URL" envDefault:"https://api.openai.com/v1"`
	Model    string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
}
