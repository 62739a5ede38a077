package commands

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/blogsync/internal/config"
	"git.home.luguber.info/inful/blogsync/internal/deploy"
	"git.home.luguber.info/inful/blogsync/internal/hugo"
)

// ErrDeployFailed is returned after a failed deployment result was printed.
var ErrDeployFailed = errors.New("deployment failed")

// DeployCmd implements the 'deploy' command.
type DeployCmd struct {
	Target  string `short:"t" required:"" help:"Target to deploy (human or ai)"`
	NoBuild bool   `name:"no-build" help:"Skip the Hugo build and publish the site as rendered"`
}

func (d *DeployCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	var opts []deploy.Option
	if d.NoBuild {
		opts = append(opts, deploy.WithBuilder(hugo.NoopBuilder{}))
	}
	res := newOrchestrator(cfg, svc, nil, opts...).Deploy(g.Ctx, d.Target)
	fmt.Println(res.Message)
	if !res.Success {
		return ErrDeployFailed
	}
	if res.BlogURL != "" {
		fmt.Printf("Latest post: %s\n", res.BlogURL)
	}
	return nil
}
