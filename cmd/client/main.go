// Package main is the codemonkey command-line client. It keeps the session
// and feature state in a JSON file in the working directory.
package main

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atinyakov/codemonkey/internal/client"
	"github.com/atinyakov/codemonkey/internal/logger"
	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/atinyakov/codemonkey/internal/repository"
	"github.com/atinyakov/codemonkey/internal/service"
	"github.com/atinyakov/codemonkey/internal/session"
	"github.com/spf13/cobra"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// cli carries the state shared by all subcommands.
type cli struct {
	storePath  string
	identities string
	delay      time.Duration

	in             *bufio.Reader
	promptPassword func(io.Writer) (string, error)
}

func main() {
	if err := newCLI(os.Stdin).rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCLI(in io.Reader) *cli {
	return &cli{
		in:             bufio.NewReader(in),
		promptPassword: client.PromptPassword,
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "codemonkey",
		Short:        "CodeMonkey developer dashboard client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.storePath, "store", client.DefaultStorePath, "path to the local session store")
	root.PersistentFlags().StringVar(&c.identities, "identities", "", "path to identities YAML file")
	root.PersistentFlags().DurationVar(&c.delay, "delay", session.DefaultLoginDelay, "simulated login delay")

	root.AddCommand(c.loginCmd(), c.logoutCmd(), c.whoamiCmd(), versionCmd())
	return root
}

func (c *cli) open(ctx context.Context) (*client.Workspace, error) {
	fx := models.DefaultFixtures()
	if c.identities != "" {
		var err error
		if fx, err = repository.LoadFixtures(c.identities); err != nil {
			return nil, err
		}
	}
	verifier := service.NewAuthService(repository.NewStaticIdentityRepository(fx))

	// warnings about discarded local data go to stderr
	log := logger.New()
	if err := log.Init("warn"); err != nil {
		return nil, err
	}
	return client.Open(ctx, c.storePath, verifier, log.Log, session.WithDelay(c.delay))
}

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in with a username and password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			username := ""
			if len(args) == 1 {
				username = args[0]
			} else {
				var err error
				if username, err = client.PromptUsername(c.in, out); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("password") {
				var err error
				if password, err = c.promptPassword(out); err != nil {
					return err
				}
			}

			ws, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Signing in...")
			id, err := ws.Session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Signed in as %s (%s)\n", id.Name, id.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the feature state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			ws.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			user, ok := ws.Session.User()
			if !ok {
				fmt.Fprintln(out, "Not signed in")
				return nil
			}
			plan := "free"
			if user.Premium {
				plan = "premium"
			}
			fmt.Fprintf(out, "%s <%s> (%s, %s)\n", user.Name, user.Email, user.Username, plan)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Build version: %s\n", cmp.Or(version, "N/A"))
			fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", cmp.Or(buildDate, "N/A"))
		},
	}
}
