package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/service"
)

// home prints the landing page of a category, the first one by default
func (a *app) home(ctx context.Context, args []string) error {
	hs := service.NewCategoryHomeStore(a.catalog, a.logger)
	if err := hs.Init(ctx); err != nil {
		return errors.New(domain.UserMessage(err))
	}

	if len(args) > 0 {
		index := categoryIndex(hs.Snapshot().Categories, args[0])
		if index < 0 {
			return fmt.Errorf("unknown category %q", args[0])
		}
		hs.SelectCategory(ctx, index)
	}
	hs.Homes.Wait()

	home, ok := hs.Current().Get()
	if !ok {
		if msg := hs.Homes.Snapshot().ErrorMessage; msg != "" {
			return errors.New(msg)
		}
		return errors.New("category page did not load")
	}

	st := hs.Snapshot()
	fmt.Printf("%s\n\n", st.Categories[st.SelectedIndex].Name)
	if len(home.Banners) > 0 {
		fmt.Println("Featured")
		printList(home.Banners)
		fmt.Println()
	}
	for _, section := range home.Sections {
		fmt.Println(section.Title)
		printList(section.Movies)
		fmt.Println()
	}
	if home.Ad != nil {
		fmt.Printf("ad: %s\n", home.Ad.LinkURL)
	}
	return nil
}

// categoryIndex matches a category by id or case-insensitive name
func categoryIndex(cats []domain.Category, query string) int {
	for i, c := range cats {
		if c.ID == query || strings.EqualFold(c.Name, query) {
			return i
		}
	}
	return -1
}

// discover prints one page of topics or actors
func (a *app) discover(ctx context.Context, args []string) error {
	tab := service.TabTopics
	if len(args) > 0 {
		switch args[0] {
		case service.TabTopics.String():
		case service.TabActors.String():
			tab = service.TabActors
		default:
			return fmt.Errorf("unknown tab %q (want %s or %s)", args[0], service.TabTopics, service.TabActors)
		}
	}

	ds := service.NewDiscoveryStore(a.catalog, a.catalog, a.cfg.API.PageSize, a.logger)
	if err := ds.SetTab(ctx, tab); err != nil {
		return errors.New(domain.UserMessage(err))
	}

	if tab == service.TabActors {
		printList(ds.Actors.Items())
	} else {
		printList(ds.Topics.Items())
	}
	return nil
}

// notifications lists the viewer's notifications. "read <id>" and
// "read all" mark them first.
func (a *app) notifications(ctx context.Context, args []string) error {
	if !a.restore(ctx) {
		fmt.Println("Not logged in.")
		return nil
	}

	ns := service.NewNotificationStore(a.catalog, a.session, a.cfg.API.PageSize, a.logger)
	defer ns.Dispose()
	if err := ns.Refresh(ctx); err != nil {
		return errors.New(domain.UserMessage(err))
	}

	if len(args) > 0 {
		if args[0] != "read" || len(args) != 2 {
			return errors.New("usage: reel notifications [read <id>|read all]")
		}
		var err error
		if args[1] == "all" {
			err = ns.MarkAllRead(ctx)
		} else {
			err = ns.MarkRead(ctx, args[1])
		}
		if err != nil {
			return errors.New(domain.UserMessage(err))
		}
	}

	items := ns.List.Items()
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	for _, n := range items {
		mark := " "
		if !n.Read {
			mark = "•"
		}
		fmt.Printf("%s %-8s %s  %s\n", mark, n.ID, n.CreatedAt.Format("2006-01-02"), n.Title)
	}
	fmt.Printf("\n%s unread\n", service.FormatBadge(ns.Unread()))
	return nil
}
