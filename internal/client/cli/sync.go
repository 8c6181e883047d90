package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/syncer"
)

// Sync runs a synchronization now and reports the resulting status.
func (a *App) Sync(ctx context.Context, _ []string) error {
	if !a.store.IsAvailable() {
		a.printf("No local store, changes are sent to the server directly\n")
		return nil
	}
	if !a.isLoggedIn() {
		a.printf("Log in first\n")
		return nil
	}
	if !a.sync.Trigger(ctx) {
		if a.engine.Running() {
			a.printf("Sync already in progress\n")
			return nil
		}
		a.printf("Sync failed: %s\n", a.engine.Status())
		return nil
	}
	a.printf("Sync complete\n")
	return nil
}

// Status prints connectivity, the engine status, the last checkpoint and
// queue counters.
func (a *App) Status(ctx context.Context, _ []string) error {
	conn := "offline"
	if a.sync.Online() || a.authService.Ping(ctx) == nil {
		conn = "online"
	}
	a.printf("Server:     %s (%s)\n", a.config.ServerEndpointAddr, conn)
	a.printf("User:       %s\n", a.userID(ctx))

	if !a.store.IsAvailable() {
		a.printf("Local store: unavailable (online-only mode)\n")
		return nil
	}
	a.printf("Sync:       %s\n", a.engine.Status())

	last, err := a.engine.LastCheckpoint(ctx)
	if err != nil {
		return err
	}
	if last.IsZero() {
		a.printf("Last sync:  never\n")
	} else {
		a.printf("Last sync:  %s\n", last.Local().Format(time.DateTime))
	}

	stats, err := a.queue.Stats(ctx)
	if err != nil {
		return err
	}
	a.printf("Queue:      %d pending, %d failed, %d completed\n", stats.Pending, stats.Failed, stats.Completed)
	return nil
}

// Queue lists pending and failed queue items.
func (a *App) Queue(ctx context.Context, _ []string) error {
	pending, err := a.queue.PendingItems(ctx)
	if err != nil {
		return err
	}
	failed, err := a.queue.FailedItems(ctx)
	if err != nil {
		return err
	}
	if len(pending)+len(failed) == 0 {
		a.printf("Queue is empty\n")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tENTITY\tOP\tQUEUED\tERROR")
	for _, list := range [][]models.SyncQueueItem{pending, failed} {
		for _, it := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Status, it.EntityType, it.Operation,
				it.Timestamp.Local().Format(time.DateTime), firstLine(it.Error, 60))
		}
	}
	return w.Flush()
}

// Retry puts a failed queue item back to pending: "retry <id>" or
// "retry all".
func (a *App) Retry(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: retry <queue-id>|all\n")
		return errUsage
	}

	var ids []int64
	if args[0] == "all" {
		failed, err := a.queue.FailedItems(ctx)
		if err != nil {
			return err
		}
		for _, it := range failed {
			ids = append(ids, it.ID)
		}
	} else {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			a.printf("Queue id must be a number\n")
			return errUsage
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		if err := a.queue.Retry(ctx, id); err != nil {
			return err
		}
	}
	a.printf("%d item(s) will be pushed on the next sync\n", len(ids))
	a.kick(ctx)
	return nil
}

// watchStatus logs every status the engine publishes.
func (a *App) watchStatus(ctx context.Context) (stop func()) {
	return a.engine.Subscribe(func(st models.SyncStatus) {
		a.logger.Info(ctx, "sync status", "status", st)
	})
}

var _ syncState = (*syncer.Engine)(nil)
