package metrics

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/centreon/go-broker/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

func TestModule_Defaults(t *testing.T) {
	var (
		reporter Reporter
		m        *Metrics
		srv      *Server
	)

	app := fxtest.New(t,
		Module(),
		fx.Populate(&reporter, &m, &srv),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, reporter)
	require.NotNil(t, m)
	assert.Nil(t, srv)

	reporter.LogPublished(2)
	assert.Equal(t, int64(2), reporter.Totals().TotalIn)
}

func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false

	var m *Metrics
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&m),
	)
	defer app.RequireStart().RequireStop()

	assert.Nil(t, m)
}

func TestModule_Server(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.ListenAddr = "127.0.0.1:0"

	var srv *Server
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&srv),
	)
	app.RequireStart()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	app.RequireStop()
}
