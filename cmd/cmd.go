// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

// runCommand starts the bridge
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Poll the media source and publish status to the configured sink",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Media source (applescript, web)",
			},
			&cli.StringFlag{
				Name:    "sink",
				Aliases: []string{"s"},
				Usage:   "Status sink (mpris, tui, http)",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "Override the sampling interval",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record plays",
			},
		},
		Action: r.Run,
	}
}

// statusCommand queries the source once
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Print the current playback status",
		Flags:  outputFlags(),
		Action: r.Status,
	}
}

// ctlCommand sends one transport command
func ctlCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "ctl",
		Usage:     "Send a transport command to the media source",
		ArgsUsage: "<play|pause|toggle|next|previous|volume N|shuffle on|off|repeat on|off|seek SECONDS>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "verb"},
			&cli.StringArg{Name: "value"},
		},
		Action: r.Ctl,
	}
}

// authCommand runs the Spotify OAuth2 flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with the Spotify Web API using OAuth2",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: authTimeout,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
		},
		Action: r.Auth,
	}
}

// historyCommand reads recorded plays
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded plays",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of rows",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "top",
				Usage: "Rank tracks by play count",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (text, csv, markdown)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file",
			},
		}, outputFlags()...),
		Action: r.History,
	}
}

// setupCommand writes the config file and prepares the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the history database",
		Action: r.Setup,
	}
}
