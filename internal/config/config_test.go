package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 0.99, cfg.PaymentSuccessRate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("PAYMENT_DELAY", "50ms")
	t.Setenv("PAYMENT_SUCCESS_RATE", "0.5")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 50*time.Millisecond, cfg.PaymentDelay)
	assert.Equal(t, 0.5, cfg.PaymentSuccessRate)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("PAYMENT_DELAY", "soon")
	t.Setenv("PAYMENT_SUCCESS_RATE", "always")

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 0.99, cfg.PaymentSuccessRate)
}
