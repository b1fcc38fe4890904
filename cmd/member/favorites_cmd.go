package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/tour-member/internal/config"
	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/validator"
)

type favoriteFlags struct {
	title       string
	slug        string
	image       string
	destination string
	code        string
	price       float64
	days        int
	nights      int
}

func (f *favoriteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "tour title")
	cmd.Flags().StringVar(&f.slug, "slug", "", "tour slug")
	cmd.Flags().StringVar(&f.image, "image", "", "cover image URL")
	cmd.Flags().StringVar(&f.destination, "destination", "", "destination name")
	cmd.Flags().StringVar(&f.code, "code", "", "tour code")
	cmd.Flags().Float64Var(&f.price, "price", 0, "starting price")
	cmd.Flags().IntVar(&f.days, "days", 0, "duration in days")
	cmd.Flags().IntVar(&f.nights, "nights", 0, "duration in nights")
}

func (f *favoriteFlags) item(cmd *cobra.Command, id int64) model.FavoriteItem {
	item := model.FavoriteItem{
		ID:          id,
		Title:       f.title,
		Slug:        f.slug,
		Image:       f.image,
		Destination: f.destination,
		Code:        f.code,
		Days:        f.days,
		Nights:      f.nights,
	}
	if cmd.Flags().Changed("price") {
		price := f.price
		item.Price = &price
	}
	return item
}

type addFavoriteInput struct {
	ID    int64  `validate:"gte=1"`
	Title string `validate:"notblank"`
}

func newFavoritesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage the tour wishlist",
	}
	cmd.AddCommand(
		newFavoritesListCmd(cfg),
		newFavoritesToggleCmd(cfg),
		newFavoritesAddCmd(cfg),
		newFavoritesRemoveCmd(cfg),
		newFavoritesClearCmd(cfg),
		newFavoritesSyncCmd(cfg),
	)
	return cmd
}

func newFavoritesListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorite tours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				items := a.favorites.List()
				if len(items) == 0 {
					fmt.Fprintln(a.out, "no favorites")
					return nil
				}
				w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tDESTINATION\tADDED")
				for _, item := range items {
					added := "-"
					if item.AddedAt != nil {
						added = item.AddedAt.Local().Format(time.DateTime)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", item.ID, item.Title, item.Destination, added)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%d favorite(s)\n", a.favorites.Count())
				return nil
			})
		},
	}
}

func newFavoritesToggleCmd(cfg *config.Config) *cobra.Command {
	var flags favoriteFlags
	cmd := &cobra.Command{
		Use:   "toggle <tour-id>",
		Short: "Add the tour if absent, remove it otherwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "tour id")
			if err != nil {
				return err
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				if a.favorites.Toggle(flags.item(cmd, id)) {
					fmt.Fprintf(a.out, "tour %d added to favorites\n", id)
				} else {
					fmt.Fprintf(a.out, "tour %d removed from favorites\n", id)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newFavoritesAddCmd(cfg *config.Config) *cobra.Command {
	var flags favoriteFlags
	cmd := &cobra.Command{
		Use:   "add <tour-id> --title <title>",
		Short: "Add a tour, refreshing its details when already present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "tour id")
			if err != nil {
				return err
			}
			if err := validator.New().Struct(addFavoriteInput{ID: id, Title: flags.title}); err != nil {
				return fmt.Errorf("--title is required")
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				if a.favorites.Add(flags.item(cmd, id)) {
					fmt.Fprintf(a.out, "tour %d added to favorites\n", id)
				} else {
					fmt.Fprintf(a.out, "tour %d updated\n", id)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newFavoritesRemoveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <tour-id>",
		Short: "Remove a tour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "tour id")
			if err != nil {
				return err
			}
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				if a.favorites.Remove(id) {
					fmt.Fprintf(a.out, "tour %d removed from favorites\n", id)
				} else {
					fmt.Fprintf(a.out, "tour %d is not a favorite\n", id)
				}
				return nil
			})
		},
	}
}

func newFavoritesClearCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite from this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, appOptions{}, func(ctx context.Context, a *app) error {
				a.favorites.Clear()
				fmt.Fprintln(a.out, "favorites cleared")
				return nil
			})
		},
	}
}

func newFavoritesSyncCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local favorites the server does not know about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, appOptions{manualSync: true}, func(ctx context.Context, a *app) error {
				memberID, ok := a.session.MemberID()
				if !ok {
					return fmt.Errorf("not logged in")
				}
				res, err := a.favorites.SyncOnLogin(ctx, memberID)
				if err != nil {
					return fmt.Errorf("sync favorites: %w", err)
				}
				fmt.Fprintf(a.out, "pushed %d, failed %d\n", res.Pushed, res.Failed)
				return nil
			})
		},
	}
}
