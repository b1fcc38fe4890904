package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/tour-member/internal/config"
	"github.com/fairyhunter13/tour-member/internal/validator"
)

func newRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "member",
		Short:         "Tour member favorites, promotions and badges",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(
		newLoginCmd(cfg),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg),
		newFavoritesCmd(cfg),
		newNotificationsCmd(cfg),
		newBadgesCmd(cfg),
		newVersionCmd(),
	)
	return root
}

// run executes fn inside one page load.
func run(cmd *cobra.Command, cfg *config.Config, opts appOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := newApp(cfg, cmd.OutOrStdout(), opts)
	defer a.close()

	if err := a.start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return id, nil
}

type loginInput struct {
	Token string `validate:"required,notblank"`
}

func newLoginCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "Store a bearer token and resolve the member behind it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := loginInput{Token: args[0]}
			if err := validator.New().Struct(in); err != nil {
				return fmt.Errorf("token must not be blank")
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				memberID, err := a.session.Login(ctx, in.Token)
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
				fmt.Fprintf(a.out, "logged in as member %d\n", memberID)
				return nil
			})
		},
	}
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				a.session.Logout()
				fmt.Fprintln(a.out, "logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				if id, ok := a.session.MemberID(); ok {
					fmt.Fprintf(a.out, "member %d\n", id)
					return nil
				}
				fmt.Fprintln(a.out, "anonymous")
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "member %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
