package system

import (
	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if ctx.Config.Backup.Auto {
		ctx.PerformAutomaticBackup()
	}
	return tui.Run(ctx.Journal)
}
