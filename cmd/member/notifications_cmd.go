package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/tour-member/internal/client"
	"github.com/fairyhunter13/tour-member/internal/config"
	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/notification"
)

func newNotificationsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and claim promotions",
	}
	cmd.AddCommand(
		newNotificationsListCmd(cfg),
		newNotificationsShowCmd(cfg),
		newNotificationsClaimCmd(cfg),
		newNotificationsReadAllCmd(cfg),
	)
	return cmd
}

func newNotificationsListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List promotions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				if !a.session.Authenticated() {
					fmt.Fprintln(a.out, "log in to see promotions")
					return nil
				}
				items, unread, err := a.notifications.List(ctx)
				if err != nil {
					return err
				}
				now := time.Now()
				w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTYPE\tSTATE\tREAD\tTITLE")
				for _, n := range items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", n.ID, n.Type, n.State(now), n.IsRead, n.Title)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%d unread\n", unread)
				return nil
			})
		},
	}
}

func newNotificationsShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a promotion and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "notification id")
			if err != nil {
				return err
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				n, err := a.notifications.Get(ctx, id)
				if err != nil {
					return describeError(err)
				}
				printNotification(a, n)
				return nil
			})
		},
	}
}

func newNotificationsClaimCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <id>",
		Short: "Claim the promotion code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "notification id")
			if err != nil {
				return err
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				code, err := a.notifications.Claim(ctx, id)
				if err != nil {
					return describeError(err)
				}
				fmt.Fprintf(a.out, "claim code: %s\n", code)
				return nil
			})
		},
	}
}

func newNotificationsReadAllCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every promotion read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				a.notifications.MarkAllRead(ctx)
				fmt.Fprintln(a.out, "all promotions marked read")
				return nil
			})
		},
	}
}

func printNotification(a *app, n *model.Notification) {
	fmt.Fprintf(a.out, "%s [%s]\n", n.Title, n.State(time.Now()))
	if n.Description != "" {
		fmt.Fprintln(a.out, n.Description)
	}
	if n.HowToUse != "" {
		fmt.Fprintf(a.out, "how to use: %s\n", n.HowToUse)
	}
	if n.EndsAt != nil {
		fmt.Fprintf(a.out, "valid until: %s\n", n.EndsAt.Local().Format(time.DateTime))
	}
	if n.RemainingClaims != nil {
		fmt.Fprintf(a.out, "remaining: %d\n", *n.RemainingClaims)
	}
	if n.ClaimCode != "" {
		fmt.Fprintf(a.out, "claim code: %s\n", n.ClaimCode)
	}
}

// describeError maps client errors onto messages a member understands.
// Server rejections are passed through unchanged.
func describeError(err error) error {
	var rejected *notification.RejectedError
	switch {
	case errors.As(err, &rejected):
		return rejected
	case errors.Is(err, client.ErrNoToken), errors.Is(err, client.ErrUnauthorized):
		return errors.New("log in to claim promotions")
	case errors.Is(err, notification.ErrNotFound):
		return errors.New("promotion not found")
	}
	return err
}
