package database

import (
	"testing"

	"picboard/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "picboard",
		DBSSLMode:  "disable",
	}

	assert.Equal(t, "host=db user=app password=secret dbname=picboard port=5433 sslmode=disable", DSN(cfg))
}
