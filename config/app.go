package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	MailAPIURL string `env:"MAIL_API_URL"`
	MailAPIKey string `env:"MAIL_API_KEY"`
	MailSender string `env:"MAIL_SENDER" default:"noreply@ebookstore.local"`

	// Lending policy. Admin-tunable via env rather than hardcoded.
	BorrowLimit   int           `env:"BORROW_LIMIT" default:"3"`
	BorrowDays    int           `env:"BORROW_DAYS" default:"30"`
	ReminderDays  int           `env:"REMINDER_DAYS" default:"5"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" default:"24h"`

	GuestCartTTL time.Duration `env:"GUEST_CART_TTL" default:"72h"`
}
