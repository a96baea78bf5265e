package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"nextchamp/app/internal/screen"
)

func (a *App) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(ctx *cli.Context) error {
			env, err := a.setup(ctx)
			if err != nil {
				return err
			}
			profile, err := env.client.LoginEmail(ctx.Context, ctx.String("email"), ctx.String("password"))
			if err != nil {
				return err
			}
			if err := env.store.Save(*profile); err != nil {
				return err
			}
			a.logger.Info().Str("user", profile.UserID).Msg("Signed in")
			fmt.Fprintf(ctx.App.Writer, "Welcome back, %s!\n", profile.Name)
			return nil
		},
	}
}

func (a *App) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the local session",
		Action: func(ctx *cli.Context) error {
			env, err := a.setup(ctx)
			if err != nil {
				return err
			}
			if err := env.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, "Signed out.")
			return nil
		},
	}
}

func (a *App) signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account (mails a verification code, then registers)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "confirm-password", Required: true},
			&cli.StringFlag{Name: "dob", Usage: "Date of birth, e.g. 2006-01-02", Required: true},
			&cli.StringFlag{Name: "height", Usage: "Height in cm", Required: true},
			&cli.StringFlag{Name: "weight", Usage: "Weight in kg", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "otp", Usage: "Verification code (prompted when omitted)"},
		},
		Action: func(ctx *cli.Context) error {
			env, err := a.setup(ctx)
			if err != nil {
				return err
			}

			wizard := screen.NewProfileWizard(env.client)
			form := screen.ProfileForm{
				Username:        ctx.String("name"),
				Email:           ctx.String("email"),
				Password:        ctx.String("password"),
				ConfirmPassword: ctx.String("confirm-password"),
				DOB:             ctx.String("dob"),
				Height:          ctx.String("height"),
				Weight:          ctx.String("weight"),
				PhoneNo:         ctx.String("phone"),
			}
			if err := wizard.Start(ctx.Context, form); err != nil {
				return err
			}
			a.logger.Info().Str("email", form.Email).Msg("Verification code sent")

			otp := ctx.String("otp")
			if otp == "" {
				otp, err = promptLine(ctx.App.Writer, "Enter the verification code sent to your email: ")
				if err != nil {
					return err
				}
			}

			userID, err := wizard.Confirm(ctx.Context, otp)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Account created. Your user id is %s. Run `%s login` to sign in.\n", userID, AppName)
			return nil
		},
	}
}

func promptLine(w interface{ Write([]byte) (int, error) }, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
