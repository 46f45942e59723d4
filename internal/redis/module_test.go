package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNewClient_PingsOnStart(t *testing.T) {
	mr := miniredis.RunT(t)
	lc := fxtest.NewLifecycle(t)

	client := NewClient(lc, config.Config{Redis: config.RedisConfig{Addr: mr.Addr()}})
	require.NotNil(t, client)

	lc.RequireStart()
	lc.RequireStop()
}
