package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Booking  BookingConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type BookingConfig struct {
	// GroupWindow is the maximum bookedAt spread for two tickets on the same
	// trip to be displayed as one booking.
	GroupWindow time.Duration
	// RollbackOnFailure cancels already-created tickets when part of a
	// checkout fan-out fails.
	RollbackOnFailure bool
}

type PaymentConfig struct {
	// Window is the seats-reserved countdown; expiry aborts the session.
	Window    time.Duration
	ReturnURL string

	VNPayURL        string
	VNPayTMNCode    string
	MoMoURL         string
	MoMoPartnerCode string
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	paymentWindowSec, err := intEnv("PAYMENT_WINDOW_SEC", 1200)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	groupWindowMs, err := intEnv("BOOKING_GROUP_WINDOW_MS", 60000)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rollback := os.Getenv("BOOKING_ROLLBACK_ON_FAILURE") != "false"

	returnURL := os.Getenv("PAYMENT_RETURN_URL")
	if returnURL == "" {
		returnURL = fmt.Sprintf("http://%s:%d/payment/callback", serverHost, serverPort)
	}

	vnpayURL := os.Getenv("VNPAY_URL")
	if vnpayURL == "" {
		vnpayURL = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	}
	vnpayTMN := os.Getenv("VNPAY_TMN_CODE")
	if vnpayTMN == "" {
		vnpayTMN = "VEBUS01"
	}

	momoURL := os.Getenv("MOMO_URL")
	if momoURL == "" {
		momoURL = "https://test-payment.momo.vn/v2/gateway/pay"
	}
	momoPartner := os.Getenv("MOMO_PARTNER_CODE")
	if momoPartner == "" {
		momoPartner = "MOMOVEBUS"
	}

	return &Config{
		Server: ServerConfig{
			Host: serverHost,
			Port: serverPort,
		},
		Postgres: PostgresConfig{
			User:     postgresUser,
			Password: postgresPassword,
			Name:     postgresDB,
			Host:     postgresHost,
			Port:     postgresPort,
			SSLMode:  postgresSSLMode,
		},
		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Booking: BookingConfig{
			GroupWindow:       time.Duration(groupWindowMs) * time.Millisecond,
			RollbackOnFailure: rollback,
		},
		Payment: PaymentConfig{
			Window:          time.Duration(paymentWindowSec) * time.Second,
			ReturnURL:       returnURL,
			VNPayURL:        vnpayURL,
			VNPayTMNCode:    vnpayTMN,
			MoMoURL:         momoURL,
			MoMoPartnerCode: momoPartner,
		},
	}, nil
}

func intEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}

	return v, nil
}
