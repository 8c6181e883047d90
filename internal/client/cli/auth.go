package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates the account.
func (a *App) Register(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Register(ctx, userName, password); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			a.printf("User %s already exists\n", userName)
		}
		return err
	}

	a.printf("Success! You can log in now.\n")
	return nil
}

// Login prompts for credentials and stores the session. Notes can be read
// and edited offline afterwards until the session expires.
func (a *App) Login(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.authService.Login(ctx, userName, password)
	switch {
	case errors.Is(err, remote.ErrUnavailable):
		a.printf("Server unavailable, try again when online\n")
		return err
	case errors.Is(err, remote.ErrUnauthorized):
		a.printf("Wrong username or password\n")
		return err
	case errors.Is(err, services.ErrPendingChanges):
		a.printf("Changes of the previous user are not synced yet; run 'sync' or 'logout --discard' first\n")
		return err
	case err != nil:
		return err
	}

	a.logger.Info(ctx, "Login successful", "user_id", sess.UserID)
	a.printf("Logged in as %s\n", userName)
	a.kick(ctx)
	return nil
}

// Logout forgets the session. "logout --discard" also drops local data,
// including changes that were never synced.
func (a *App) Logout(ctx context.Context, args []string) error {
	discard := len(args) > 0 && args[0] == "--discard"
	if discard {
		ok, err := Confirm(a.reader, "Unsynced changes will be lost. Continue?", a.out)
		if err != nil || !ok {
			return err
		}
	}
	if err := a.authService.Logout(ctx, discard); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}
