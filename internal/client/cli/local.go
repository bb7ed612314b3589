package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Links lists the quick links kept in the owner-scoped local slot.
func (a *App) Links(ctx context.Context) error {
	if !a.guard("/links") {
		return nil
	}
	links := a.links.Get()
	if len(links) == 0 {
		fmt.Println("No links yet")
		return nil
	}
	for i, l := range links {
		fmt.Printf("%d. %s  %s\n", i+1, l.Title, l.URL)
	}
	return nil
}

// AddLink appends a quick link. The change lands in the local slot and other
// copies of this dashboard pick it up through the change feed.
func (a *App) AddLink(ctx context.Context) error {
	if !a.guard("/links") {
		return nil
	}
	title, err := getSimpleText(a.reader, "Enter link title", os.Stdout)
	if err != nil {
		return err
	}
	rawURL, err := getSimpleText(a.reader, "Enter URL", os.Stdout)
	if err != nil {
		return err
	}
	if title == "" || rawURL == "" {
		fmt.Println("Both title and URL are required")
		return nil
	}
	a.links.Update(ctx, func(links []Link) []Link {
		return append(links, Link{Title: title, URL: rawURL})
	})
	fmt.Println("Added")
	return nil
}

// DeleteLink removes a quick link by its list position.
func (a *App) DeleteLink(ctx context.Context) error {
	if !a.guard("/links") {
		return nil
	}
	raw, err := getSimpleText(a.reader, "Enter link number", os.Stdout)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		fmt.Println("Expected a positive number")
		return nil
	}
	removed := false
	a.links.Update(ctx, func(links []Link) []Link {
		if n > len(links) {
			return links
		}
		removed = true
		return append(links[:n-1], links[n:]...)
	})
	if removed {
		fmt.Println("Deleted")
	} else {
		fmt.Println("No link with that number")
	}
	return nil
}

// Stories lists the story ideas kept in the owner-scoped local slot.
func (a *App) Stories(ctx context.Context) error {
	if !a.guard("/story-ideas") {
		return nil
	}
	stories := a.stories.Get()
	if len(stories) == 0 {
		fmt.Println("No story ideas yet")
		return nil
	}
	for i, s := range stories {
		if s.Genre != "" {
			fmt.Printf("%d. %s (%s)\n", i+1, s.Title, s.Genre)
		} else {
			fmt.Printf("%d. %s\n", i+1, s.Title)
		}
	}
	return nil
}

// AddStory appends a story idea.
func (a *App) AddStory(ctx context.Context) error {
	if !a.guard("/story-ideas") {
		return nil
	}
	title, err := getSimpleText(a.reader, "Enter story title", os.Stdout)
	if err != nil {
		return err
	}
	if title == "" {
		fmt.Println("Title cannot be empty")
		return nil
	}
	genre, err := getSimpleText(a.reader, "Enter genre (optional)", os.Stdout)
	if err != nil {
		return err
	}
	a.stories.Update(ctx, func(stories []StoryIdea) []StoryIdea {
		return append(stories, StoryIdea{Title: title, Genre: genre})
	})
	fmt.Println("Added")
	return nil
}
