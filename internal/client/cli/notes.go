package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

var errUsage = errors.New("wrong usage")

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func firstLine(s string, max int) string {
	s, _, _ = strings.Cut(s, "\n")
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// resolveNote finds an active note by full id or unique id prefix.
func (a *App) resolveNote(ctx context.Context, ref string) (*models.Note, error) {
	all, err := a.notes.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var found []models.Note
	for _, n := range all {
		if n.ID == ref {
			return &n, nil
		}
		if strings.HasPrefix(n.ID, ref) {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("note %s: %w", ref, common.ErrNotFound)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("note id prefix %s is ambiguous", ref)
	}
}

// List prints notes. "notes" hides archived ones; "notes fav",
// "notes archived" and "notes all" select other views.
func (a *App) List(ctx context.Context, args []string) error {
	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}

	var (
		list []models.Note
		err  error
	)
	switch filter {
	case "fav", "favorites":
		list, err = a.notes.ListFavorites(ctx)
	case "", "all", "archived":
		list, err = a.notes.ListActive(ctx)
	default:
		a.printf("Usage: notes [fav|archived|all]\n")
		return errUsage
	}
	if err != nil {
		return err
	}

	shown := list[:0]
	for _, n := range list {
		switch {
		case filter == "archived" && !n.IsArchived:
		case filter == "" && n.IsArchived:
		default:
			shown = append(shown, n)
		}
	}
	sort.Slice(shown, func(i, j int) bool { return shown[i].UpdatedAt.After(shown[j].UpdatedAt) })

	if len(shown) == 0 {
		a.printf("No notes\n")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFLAGS\tUPDATED\tTITLE")
	for _, n := range shown {
		flags := ""
		if n.IsFavorite {
			flags += "*"
		}
		if n.IsArchived {
			flags += "a"
		}
		title := n.Title
		if title == "" {
			title = firstLine(n.Content, 40)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(n.ID), flags, n.UpdatedAt.Local().Format("2006-01-02 15:04"), title)
	}
	return w.Flush()
}

// Show prints one note with its tags.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: show <note-id>\n")
		return errUsage
	}
	n, err := a.resolveNote(ctx, args[0])
	if err != nil {
		return err
	}
	tagList, err := a.links.TagsForNote(ctx, n.ID)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(tagList))
	for _, t := range tagList {
		names = append(names, t.Name)
	}

	a.printf("ID:       %s\n", n.ID)
	a.printf("Title:    %s\n", n.Title)
	a.printf("Updated:  %s\n", n.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	a.printf("Favorite: %t  Archived: %t\n", n.IsFavorite, n.IsArchived)
	a.printf("Tags:     %s\n", strings.Join(names, ", "))
	a.printf("\n%s\n", n.Content)
	return nil
}

// AddNote prompts for a title and body and stores a new note.
func (a *App) AddNote(ctx context.Context, _ []string) error {
	title, err := getSimpleText(a.reader, "Title (optional)", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Text", "", a.out)
	if err != nil {
		return err
	}

	n, err := a.notes.Create(ctx, title, content)
	if err != nil {
		return err
	}
	a.printf("Note %s saved\n", shortID(n.ID))
	a.kick(ctx)
	return nil
}

// EditNote prompts for a new title and body; empty answers keep the
// current values.
func (a *App) EditNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: edit <note-id>\n")
		return errUsage
	}
	n, err := a.resolveNote(ctx, args[0])
	if err != nil {
		return err
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", n.Title), a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Text", n.Content, a.out)
	if err != nil {
		return err
	}

	var p notes.Patch
	if title != "" && title != n.Title {
		p.Title = &title
	}
	if content != n.Content {
		p.Content = &content
	}
	if p.Title == nil && p.Content == nil {
		a.printf("Nothing changed\n")
		return nil
	}
	if _, err := a.notes.Update(ctx, n.ID, p); err != nil {
		return err
	}
	a.printf("Note %s updated\n", shortID(n.ID))
	a.kick(ctx)
	return nil
}

// DeleteNote moves a note to the trash (tombstone).
func (a *App) DeleteNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: delete <note-id>\n")
		return errUsage
	}
	n, err := a.resolveNote(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.notes.Delete(ctx, n.ID); err != nil {
		return err
	}
	a.printf("Note %s deleted\n", shortID(n.ID))
	a.kick(ctx)
	return nil
}

// ToggleFavorite flips the favorite flag.
func (a *App) ToggleFavorite(ctx context.Context, args []string) error {
	return a.toggle(ctx, args, "fav", func(n *models.Note) notes.Patch {
		v := !n.IsFavorite
		return notes.Patch{IsFavorite: &v}
	})
}

// ToggleArchive flips the archived flag.
func (a *App) ToggleArchive(ctx context.Context, args []string) error {
	return a.toggle(ctx, args, "archive", func(n *models.Note) notes.Patch {
		v := !n.IsArchived
		return notes.Patch{IsArchived: &v}
	})
}

func (a *App) toggle(ctx context.Context, args []string, name string, patch func(*models.Note) notes.Patch) error {
	if len(args) != 1 {
		a.printf("Usage: %s <note-id>\n", name)
		return errUsage
	}
	n, err := a.resolveNote(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := a.notes.Update(ctx, n.ID, patch(n))
	if err != nil {
		return err
	}
	a.printf("Note %s: favorite=%t archived=%t\n", shortID(updated.ID), updated.IsFavorite, updated.IsArchived)
	a.kick(ctx)
	return nil
}
