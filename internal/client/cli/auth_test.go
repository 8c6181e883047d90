package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/stretchr/testify/require"
)

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	regUser string
	regPass []byte
	regErr  error

	loginUser string
	loginPass []byte
	loginRet  models.Session
	loginErr  error

	logoutCalled  bool
	logoutDiscard bool
	logoutErr     error

	pingErr error
}

func (f *fakeAuth) Register(_ context.Context, user string, pass []byte) (string, error) {
	f.regUser, f.regPass = user, append([]byte(nil), pass...)
	return "u1", f.regErr
}

func (f *fakeAuth) Login(_ context.Context, user string, pass []byte) (models.Session, error) {
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	return f.loginRet, f.loginErr
}

func (f *fakeAuth) Logout(_ context.Context, discard bool) error {
	f.logoutCalled, f.logoutDiscard = true, discard
	return f.logoutErr
}

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

func TestRegister_Success(t *testing.T) {
	ta := newTestApp(t)
	f := &fakeAuth{}
	ta.authService = f
	password := []byte("secret")
	stubInputs(t, "alice", password)

	require.NoError(t, ta.Register(context.Background(), nil))
	require.Equal(t, "alice", f.regUser)
	require.Equal(t, "secret", string(f.regPass))
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0}, password, "password must be wiped")
	require.Contains(t, ta.output(), "Success!")
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "ok", message: "Logged in as alice"},
		{name: "unavailable", err: remote.ErrUnavailable, message: "Server unavailable"},
		{name: "unauthorized", err: remote.ErrUnauthorized, message: "Wrong username or password"},
		{name: "pending changes", err: services.ErrPendingChanges, message: "not synced yet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			f := &fakeAuth{loginRet: models.Session{UserID: "u1"}, loginErr: tt.err}
			ta.authService = f
			stubInputs(t, "alice", []byte("pw"))

			err := ta.Login(context.Background(), nil)
			if tt.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.err)
			}
			require.Equal(t, "alice", f.loginUser)
			require.Contains(t, ta.output(), tt.message)
		})
	}
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t)
	f := &fakeAuth{}
	ta.authService = f

	require.NoError(t, ta.Logout(context.Background(), nil))
	require.True(t, f.logoutCalled)
	require.False(t, f.logoutDiscard)
}

func TestLogout_DiscardAsksForConfirmation(t *testing.T) {
	ta := newTestApp(t, "n")
	f := &fakeAuth{}
	ta.authService = f

	require.NoError(t, ta.Logout(context.Background(), []string{"--discard"}))
	require.False(t, f.logoutCalled)

	ta.reader = rdr("y\n")
	require.NoError(t, ta.Logout(context.Background(), []string{"--discard"}))
	require.True(t, f.logoutDiscard)
}

func TestLogout_ErrorPropagates(t *testing.T) {
	ta := newTestApp(t)
	ta.authService = &fakeAuth{logoutErr: errors.New("clean-fail")}
	require.Error(t, ta.Logout(context.Background(), nil))
}
