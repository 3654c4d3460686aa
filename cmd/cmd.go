// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func courseIDArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

// setupCommand initializes the database and configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml populated with defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the configuration file (default: $ZXY_CONFIG or config.toml)",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// courseCommand browses the course catalog
func courseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "course",
		Aliases: []string{"courses"},
		Usage:   "Browse the course catalog",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List courses with overall progress",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.CourseList,
			},
			{
				Name:      "show",
				Usage:     "Show a course outline",
				Arguments: courseIDArg(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.CourseShow,
			},
		},
	}
}

// progressCommand inspects and manages saved progress
func progressCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Inspect and manage saved course progress",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show per-lesson progress for a course",
				Arguments: courseIDArg(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ProgressShow,
			},
			{
				Name:   "list",
				Usage:  "List courses with saved progress",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.ProgressList,
			},
			{
				Name:      "reset",
				Usage:     "Delete saved progress for a course",
				Arguments: courseIDArg(),
				Action:    r.ProgressReset,
			},
			{
				Name:      "export",
				Usage:     "Export a progress report",
				Arguments: courseIDArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format (text, md, csv, json)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, or - for stdout",
					},
					&cli.BoolFlag{
						Name:  "clipboard",
						Usage: "Copy the report to the system clipboard instead of writing a file",
					},
				},
				Action: r.ProgressExport,
			},
			{
				Name:  "export-all",
				Usage: "Export a report for every course with saved progress",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format (text, md, csv, json)",
						Value:   "md",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: progress_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 4,
					},
				},
				Action: r.ProgressExportAll,
			},
		},
	}
}

// sessionCommand lists learning session history
func sessionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sessions"},
		Usage:   "Learning session history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded sessions, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "course",
						Aliases: []string{"c"},
						Usage:   "Only sessions for this course",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of sessions to return",
						Value: 20,
					},
					jsonFlag(),
				},
				Action: r.SessionList,
			},
		},
	}
}

// learnCommand launches the interactive player
func learnCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "learn",
		Usage:     "Open the interactive player, optionally on a course",
		Arguments: courseIDArg(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep progress in memory only",
			},
		},
		Action: r.Learn,
	}
}

// serveCommand runs the local progress API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog and progress store over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}
