package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/tour-member/internal/config"
	"github.com/fairyhunter13/tour-member/internal/model"
)

func newBadgesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Resolve the labels shown on tour cards",
	}
	cmd.AddCommand(newBadgesCardCmd(cfg), newBadgesPeriodCmd(cfg))
	return cmd
}

func newBadgesCardCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "card <tour-id>",
		Short: "Badges on a tour card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tourID, err := parseID(args[0], "tour id")
			if err != nil {
				return err
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				a.badges.Load(ctx)
				printBadges(a, a.badges.Badges(tourID))
				return nil
			})
		},
	}
}

func newBadgesPeriodCmd(cfg *config.Config) *cobra.Command {
	var (
		periodID int64
		discount float64
	)
	cmd := &cobra.Command{
		Use:   "period <tour-id>",
		Short: "Badges on a departure period row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tourID, err := parseID(args[0], "tour id")
			if err != nil {
				return err
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				a.badges.Load(ctx)
				printBadges(a, a.badges.PeriodBadges(tourID, discount, periodID))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&periodID, "period", 0, "departure period id")
	cmd.Flags().Float64Var(&discount, "discount", 0, "discount amount in rupiah")
	return cmd
}

func printBadges(a *app, badges []model.BadgeInfo) {
	if len(badges) == 0 {
		fmt.Fprintln(a.out, "no badges")
		return
	}
	for _, b := range badges {
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", b.Text, b.Color, b.Icon)
	}
}
