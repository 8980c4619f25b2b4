package config_test

import (
	"testing"

	"github.com/kart-io/rtmq/config"
	"github.com/kart-io/rtmq/logger"
	"github.com/stretchr/testify/assert"
)

func TestNewAppliesDefaults(t *testing.T) {
	c := config.New()
	assert.Equal(t, logger.Discard, c.Logger)
	assert.Equal(t, 10, c.DefaultAttr.MaxMessages)
	assert.Equal(t, 8192, c.DefaultAttr.MessageSize)
	assert.Empty(t, c.OTLPEndpoint)
}

func TestWithDefaultAttrOverrides(t *testing.T) {
	c := config.New(config.WithDefaultAttr(4, 64))
	assert.Equal(t, 4, c.DefaultAttr.MaxMessages)
	assert.Equal(t, 64, c.DefaultAttr.MessageSize)
}

func TestWithOTLPEndpointAndServiceName(t *testing.T) {
	c := config.New(config.WithOTLPEndpoint("otel-collector:4318"), config.WithServiceName("rtmq-demo"))
	assert.Equal(t, "otel-collector:4318", c.OTLPEndpoint)
	assert.Equal(t, "rtmq-demo", c.ServiceName)
}

func TestWithDefaultLoggerSetsNonDiscardLogger(t *testing.T) {
	c := config.New(config.WithDefaultLogger(logger.Info, false))
	assert.NotEqual(t, logger.Discard, c.Logger)
}
