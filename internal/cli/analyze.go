package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"nextchamp/app/internal/domain"
	"nextchamp/app/internal/media"
	"nextchamp/app/internal/screen"
)

func (a *App) analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Upload an exercise video for analysis and show the report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "video",
				Usage:    "Path to the recording (MP4, AVI, MOV or MKV)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "exercise",
				Usage:    "Exercise type, e.g. SQUATS or vertical_jump",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "save-report",
				Usage: "Also download the PDF report to this file",
			},
			&cli.StringFlag{
				Name:  "save-video",
				Usage: "Also download the analyzed video to this file",
			},
		},
		Action: a.analyze,
	}
}

func (a *App) analyze(ctx *cli.Context) error {
	env, err := a.setup(ctx)
	if err != nil {
		return err
	}
	profile, err := env.requireSession()
	if err != nil {
		return err
	}
	exercise, err := domain.ParseExerciseType(ctx.String("exercise"))
	if err != nil {
		return err
	}

	uploadScreen := screen.NewUploadScreen(env.client, env.cfg.Server.BaseURL, *profile)
	defer uploadScreen.Dispose()

	if err := uploadScreen.SelectExercise(exercise); err != nil {
		return err
	}
	if err := uploadScreen.AcquireVideo(ctx.Context, media.NewLibrarySource(ctx.String("video"))); err != nil {
		return err
	}
	if uploadScreen.Video() == nil {
		return screen.ErrNoVideo
	}

	a.logger.Info().
		Str("exercise", exercise.String()).
		Str("video", uploadScreen.Video().FileName).
		Msg("Uploading for analysis")

	report, err := uploadScreen.Submit(ctx.Context)
	if err != nil {
		a.logger.Error().Err(err).Msg("Analysis failed")
		return fmt.Errorf("%s", uploadScreen.Notice())
	}

	printReport(ctx, exercise, screen.RenderReport(report))

	if url, ok := uploadScreen.AnalyzedVideoURL(); ok {
		fmt.Fprintf(ctx.App.Writer, "\nAnalyzed video: %s\n", url)
	}
	if out := ctx.String("save-report"); out != "" {
		if err := saveTo(ctx, uploadScreen.DownloadReport, out); err != nil {
			a.logger.Error().Err(err).Msg("Report download failed")
		} else {
			fmt.Fprintf(ctx.App.Writer, "Report saved to %s\n", out)
		}
	}
	if out := ctx.String("save-video"); out != "" {
		if !uploadScreen.CanDownloadAnalyzedVideo() {
			a.logger.Warn().Msg("No analyzed video available for download")
		} else if err := saveTo(ctx, uploadScreen.DownloadAnalyzedVideo, out); err != nil {
			a.logger.Error().Err(err).Msg("Video download failed")
		} else {
			fmt.Fprintf(ctx.App.Writer, "Analyzed video saved to %s\n", out)
		}
	}
	return nil
}

func printReport(ctx *cli.Context, exercise domain.ExerciseType, view screen.ReportView) {
	w := ctx.App.Writer
	fmt.Fprintf(w, "\n%s Analysis Report\n", exercise.DisplayName())
	if view.Message != "" {
		fmt.Fprintf(w, "%s\n", view.Message)
	}
	fmt.Fprintf(w, "\n  Score:         %s\n", view.Score)
	fmt.Fprintf(w, "  Grade:         %s\n", view.Grade)
	fmt.Fprintf(w, "  Reps:          %s\n", view.Reps)
	fmt.Fprintf(w, "  Form accuracy: %s\n", view.Accuracy)
	fmt.Fprintf(w, "  Duration:      %s\n", view.Duration)
	fmt.Fprintln(w, "\n  Feedback:")
	for _, line := range view.Feedback {
		fmt.Fprintf(w, "   - %s\n", line)
	}
}

// saveTo runs one post-report download into a freshly created file.
func saveTo(ctx *cli.Context, download func(context.Context, io.Writer) error, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return download(ctx.Context, f)
}

func (a *App) downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download artifacts of a past analysis run",
		Subcommands: []*cli.Command{
			{
				Name:  "report",
				Usage: "Download the PDF report for a test id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "test-id", Required: true},
					&cli.StringFlag{Name: "out", Usage: "Output file (defaults under downloads.dir)"},
				},
				Action: func(ctx *cli.Context) error {
					env, err := a.setup(ctx)
					if err != nil {
						return err
					}
					out := ctx.String("out")
					if out == "" {
						out = filepath.Join(env.cfg.Downloads.Dir, "exercise_report_"+ctx.String("test-id")+".pdf")
					}
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", out, err)
					}
					defer f.Close()
					if _, err := env.client.DownloadReport(ctx.Context, ctx.String("test-id"), f); err != nil {
						return err
					}
					fmt.Fprintf(ctx.App.Writer, "Report saved to %s\n", out)
					return nil
				},
			},
			{
				Name:  "video",
				Usage: "Download the analyzed video for a test id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "test-id", Required: true},
					&cli.StringFlag{Name: "out", Usage: "Output file (defaults under downloads.dir)"},
				},
				Action: func(ctx *cli.Context) error {
					env, err := a.setup(ctx)
					if err != nil {
						return err
					}
					out := ctx.String("out")
					if out == "" {
						out = filepath.Join(env.cfg.Downloads.Dir, "analyzed_video_"+ctx.String("test-id")+".mp4")
					}
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", out, err)
					}
					defer f.Close()
					if _, err := env.client.DownloadAnalyzedVideo(ctx.Context, ctx.String("test-id"), f); err != nil {
						return err
					}
					fmt.Fprintf(ctx.App.Writer, "Analyzed video saved to %s\n", out)
					return nil
				},
			},
		},
	}
}
