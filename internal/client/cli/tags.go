package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// resolveTag finds a tag by exact name, full id or unique id prefix.
func (a *App) resolveTag(ctx context.Context, ref string) (*models.Tag, error) {
	t, err := a.tags.GetByName(ctx, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	all, err := a.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	var found []models.Tag
	for _, t := range all {
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("tag %s: %w", ref, common.ErrNotFound)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("tag id prefix %s is ambiguous", ref)
	}
}

// ListTags prints the user's tags with the number of active notes using each.
// "tags <name>" lists the notes carrying that tag instead.
func (a *App) ListTags(ctx context.Context, args []string) error {
	if len(args) > 0 {
		t, err := a.resolveTag(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		noteList, err := a.links.NotesForTag(ctx, t.ID)
		if err != nil {
			return err
		}
		a.printf("Notes tagged %q:\n", t.Name)
		for _, n := range noteList {
			a.printf("  %s  %s\n", shortID(n.ID), n.Title)
		}
		return nil
	}

	all, err := a.tags.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		a.printf("No tags\n")
		return nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	for _, t := range all {
		a.printf("%s  %s\n", shortID(t.ID), t.Name)
	}
	return nil
}

// Tag manages tags: "tag add <name>", "tag rename <tag> <name>",
// "tag delete <tag>".
func (a *App) Tag(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.printf("Usage: tag add <name> | tag rename <tag> <new name> | tag delete <tag>\n")
		return errUsage
	}

	switch args[0] {
	case "add":
		t, err := a.tags.Create(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		a.printf("Tag %q created (%s)\n", t.Name, shortID(t.ID))

	case "rename":
		if len(args) < 3 {
			a.printf("Usage: tag rename <tag> <new name>\n")
			return errUsage
		}
		t, err := a.resolveTag(ctx, args[1])
		if err != nil {
			return err
		}
		renamed, err := a.tags.Rename(ctx, t.ID, strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		a.printf("Tag renamed to %q\n", renamed.Name)

	case "delete", "rm":
		t, err := a.resolveTag(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if err := a.tags.Delete(ctx, t.ID); err != nil {
			return err
		}
		a.printf("Tag %q deleted\n", t.Name)

	default:
		a.printf("Unknown tag command: %s\n", args[0])
		return errUsage
	}

	a.kick(ctx)
	return nil
}

// Attach links a note to a tag: "attach <note> <tag>".
func (a *App) Attach(ctx context.Context, args []string) error {
	n, t, err := a.noteAndTag(ctx, "attach", args)
	if err != nil {
		return err
	}
	if _, err := a.links.Attach(ctx, n.ID, t.ID); err != nil {
		return err
	}
	a.printf("Note %s tagged %q\n", shortID(n.ID), t.Name)
	a.kick(ctx)
	return nil
}

// Detach removes a tag from a note: "detach <note> <tag>".
func (a *App) Detach(ctx context.Context, args []string) error {
	n, t, err := a.noteAndTag(ctx, "detach", args)
	if err != nil {
		return err
	}
	if err := a.links.Detach(ctx, n.ID, t.ID); err != nil {
		return err
	}
	a.printf("Tag %q removed from note %s\n", t.Name, shortID(n.ID))
	a.kick(ctx)
	return nil
}

func (a *App) noteAndTag(ctx context.Context, cmd string, args []string) (*models.Note, *models.Tag, error) {
	if len(args) < 2 {
		a.printf("Usage: %s <note-id> <tag>\n", cmd)
		return nil, nil, errUsage
	}
	n, err := a.resolveNote(ctx, args[0])
	if err != nil {
		return nil, nil, err
	}
	t, err := a.resolveTag(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return nil, nil, err
	}
	return n, t, nil
}
