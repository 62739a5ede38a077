package commands

import (
	"fmt"

	"git.home.luguber.info/inful/blogsync/internal/config"
	"git.home.luguber.info/inful/blogsync/internal/content"
)

// URLCmd implements the 'url' command.
type URLCmd struct {
	Target string `short:"t" required:"" help:"Target whose newest post to print"`
}

func (u *URLCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	target, err := cfg.Target(u.Target)
	if err != nil {
		return err
	}
	post, err := content.NewSyncer(target).LatestPost()
	if err != nil {
		return err
	}
	fmt.Println(post.URL)
	return nil
}
