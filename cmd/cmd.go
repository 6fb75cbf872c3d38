// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml populated with defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the login session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the login session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in through the browser and store the session token",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the login URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session token",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Check service health and the stored session (calls /health)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:  "whoami",
				Usage: "Show the logged in profile (calls /me)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}

// roomCommand handles room pairing
func roomCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "room",
		Usage: "Pair with a friend through a room code",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a room and print its code",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "copy",
						Usage: "Copy the room code to the clipboard",
					},
				},
				Action: r.RoomCreate,
			},
			{
				Name:  "check",
				Usage: "Check whether a room code is open",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "code"},
				},
				Action: r.RoomCheck,
			},
			{
				Name:  "join",
				Usage: "Join a friend's room and compare liked songs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "code"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, csv, json)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Only show tracks matching this query",
					},
					&cli.StringFlag{
						Name:  "set",
						Usage: "Only list one set (mine, theirs, common)",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Number of track pages to show per list",
						Value: 1,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to this file or directory instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download cover art next to a markdown export",
					},
				},
				Action: r.RoomJoin,
			},
		},
	}
}

// historyCommand handles saved comparisons
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse saved comparisons",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved comparisons, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "code",
						Usage: "Only show comparisons for this room code",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of comparisons to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a saved comparison by id or number",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, csv, json)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to this file",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Export saved comparisons to a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (text, markdown, csv, json)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: vibesync_export_{timestamp})",
					},
					&cli.StringFlag{
						Name:  "code",
						Usage: "Only export comparisons for this room code",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download cover art next to markdown exports",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved comparison",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive pairing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for comparing libraries",
		Action:  r.TUI,
	}
}
