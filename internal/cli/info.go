package cli

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"nextchamp/app/internal/domain"
	"nextchamp/app/internal/screen"
)

func (a *App) resultsCommand() *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "List your past analysis runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results",
				Value:   10,
			},
		},
		Action: func(ctx *cli.Context) error {
			env, err := a.setup(ctx)
			if err != nil {
				return err
			}
			profile, err := env.requireSession()
			if err != nil {
				return err
			}
			results, err := env.client.TestResults(ctx.Context, profile.UserID, ctx.Int("limit"))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(ctx.App.Writer, "No test results yet. Run `nextchamp analyze` first.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(ctx.App.Writer, "%s  %-20s score %.1f  (test %s)\n",
					r.Timestamp.Format("2006-01-02 15:04"), r.ExerciseType, r.Score, r.TestID)
			}
			return nil
		},
	}
}

func (a *App) statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show your aggregate progress",
		Action: func(ctx *cli.Context) error {
			env, err := a.setup(ctx)
			if err != nil {
				return err
			}
			profile, err := env.requireSession()
			if err != nil {
				return err
			}
			stats, err := env.client.UserStats(ctx.Context, profile.UserID)
			if err != nil {
				return err
			}
			w := ctx.App.Writer
			fmt.Fprintf(w, "Total tests: %d\n", stats.TotalTests)
			fmt.Fprintf(w, "Average:     %.1f\n", stats.AvgScore)
			fmt.Fprintf(w, "Best:        %.1f\n", stats.MaxScore)
			fmt.Fprintf(w, "Worst:       %.1f\n", stats.MinScore)
			fmt.Fprintf(w, "Trend:       %s\n", stats.ProgressTrend)
			return nil
		},
	}
}

func (a *App) planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Fetch the workout plan generated from your test results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "test-id",
				Usage: "Base the plan on a specific test instead of the latest",
			},
		},
		Action: func(ctx *cli.Context) error {
			env, err := a.setup(ctx)
			if err != nil {
				return err
			}
			profile, err := env.requireSession()
			if err != nil {
				return err
			}
			plan, err := env.client.WorkoutPlan(ctx.Context, profile.UserID, ctx.String("test-id"))
			if err != nil {
				return err
			}
			// The plan schema is server-owned; print it as indented JSON.
			encoded, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, string(encoded))
			return nil
		},
	}
}

func (a *App) chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Assistant conversation history",
		Subcommands: []*cli.Command{
			{
				Name:  "history",
				Usage: "Show the stored conversation",
				Action: func(ctx *cli.Context) error {
					env, err := a.setup(ctx)
					if err != nil {
						return err
					}
					profile, err := env.requireSession()
					if err != nil {
						return err
					}
					chat := screen.NewChatScreen(env.client, profile.UserID)
					if err := chat.Load(ctx.Context); err != nil {
						return err
					}
					history := chat.History()
					if len(history) == 0 {
						fmt.Fprintln(ctx.App.Writer, "No conversation yet.")
						return nil
					}
					for _, entry := range history {
						prefix := "You"
						if entry.Type == domain.ChatAnswer {
							prefix = "NextChamp"
						}
						fmt.Fprintf(ctx.App.Writer, "%s: %s\n", prefix, entry.Statement)
					}
					return nil
				},
			},
			{
				Name:  "record",
				Usage: "Append a line to the conversation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Q for a question, A for an answer",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "message",
						Aliases:  []string{"m"},
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					env, err := a.setup(ctx)
					if err != nil {
						return err
					}
					profile, err := env.requireSession()
					if err != nil {
						return err
					}
					chat := screen.NewChatScreen(env.client, profile.UserID)
					switch ctx.String("type") {
					case domain.ChatQuestion:
						return chat.RecordQuestion(ctx.Context, ctx.String("message"))
					case domain.ChatAnswer:
						return chat.RecordAnswer(ctx.Context, ctx.String("message"))
					default:
						return fmt.Errorf("invalid entry type %q: use Q or A", ctx.String("type"))
					}
				},
			},
		},
	}
}

func (a *App) healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check the analysis service",
		Action: func(ctx *cli.Context) error {
			env, err := a.setup(ctx)
			if err != nil {
				return err
			}
			if err := env.client.Health(ctx.Context); err != nil {
				return fmt.Errorf("backend unhealthy: %w", err)
			}
			fmt.Fprintln(ctx.App.Writer, "Backend is healthy.")
			return nil
		},
	}
}
