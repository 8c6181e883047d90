// Package notes is the client-side repository for notes.
//
// # Overview
//
// Every mutation is written to the local store and appended to the sync
// queue in a single transaction, so the queue never misses a local change
// and never carries a change that was rolled back. Deletes are soft: the
// note keeps its row with DeletedAt set so that other devices can pull the
// tombstone.
//
// # Online-only mode
//
// When the local store could not be opened, writes are applied straight to
// the remote backend and reads are served from it.
//
// Typical Usage
//
//	repo := notes.New(deps)
//	n, _ := repo.Create(ctx, "title", "body")
//	_, _ = repo.Update(ctx, n.ID, notes.Patch{IsFavorite: ptr(true)})
//	list, _ := repo.ListActive(ctx)
//	_ = repo.Delete(ctx, n.ID)
package notes
