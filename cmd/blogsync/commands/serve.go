package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/blogsync/internal/config"
	"git.home.luguber.info/inful/blogsync/internal/metrics"
	"git.home.luguber.info/inful/blogsync/internal/server/httpserver"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	recorder := newPrometheusRecorder()
	srv := httpserver.New(httpserver.Options{
		Addr:     cfg.Server.Addr,
		Deployer: newOrchestrator(cfg, svc, recorder),
		History:  svc.history,
		Metrics:  recorder.Handler(),
	})
	return srv.ListenAndServe(g.Ctx)
}

// newPrometheusRecorder registers the deployment metrics next to the Go
// runtime and process collectors.
func newPrometheusRecorder() *metrics.PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return metrics.NewPrometheusRecorder(reg)
}
