package main

import (
	"github.com/alecthomas/kong"
)

// CLI is the command line of staysd.
type CLI struct {
	Config string `short:"c" help:"Configuration file path" env:"CONFIG_PATH" default:"./config/config.yaml" type:"path"`

	Serve  ServeCmd  `cmd:"" default:"1" help:"Run the HTTP API (default)"`
	Export ExportCmd `cmd:"" help:"Write the persisted state as JSON"`
	Import ImportCmd `cmd:"" help:"Replace the persisted state with a JSON file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("staysd"),
		kong.Description("Rooms, residents and stays of a care facility."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}
