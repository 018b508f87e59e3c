package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ProNetwork/config"
)

func TestKey(t *testing.T) {
	old := config.Cfg.RedisPrefix
	t.Cleanup(func() { config.Cfg.RedisPrefix = old })

	config.Cfg.RedisPrefix = "pronet"
	assert.Equal(t, "pronet:wizard:abc", Key("wizard", "abc"))
	assert.Equal(t, "pronet:token:jane", Key("token", "", "jane"))

	config.Cfg.RedisPrefix = ""
	assert.Equal(t, "pronet:x", Key("x"))
}
