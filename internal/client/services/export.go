package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/client/remote"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
	"github.com/dmitrijs2005/notekeeper/internal/filex"
	"github.com/dmitrijs2005/notekeeper/internal/netx"
)

// Exporter asks the server to build an archive of the user's notes.
type Exporter interface {
	ExportArchive(ctx context.Context, userID string) (*remote.Archive, error)
}

// ExportResult describes a downloaded archive.
type ExportResult struct {
	Archive *remote.Archive
	Path      string
	Bytes     int64
	Encrypted bool
}

type ExportService struct {
	remote   Exporter
	sessions session.Provider
	http     *http.Client
}

func NewExportService(r Exporter, sessions session.Provider, client *http.Client) *ExportService {
	return &ExportService{remote: r, sessions: sessions, http: client}
}

// Export requests a fresh archive and downloads it to path. A non-empty
// passphrase seals the downloaded file in place.
func (s *ExportService) Export(ctx context.Context, path string, passphrase []byte) (*ExportResult, error) {
	sess, ok := s.sessions.Current(ctx)
	if !ok {
		return nil, common.ErrUnauthorized
	}

	path, err := filex.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	a, err := s.remote.ExportArchive(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("export error: %w", err)
	}

	n, err := netx.DownloadPresignedURL(ctx, s.http, a.URL, path)
	if err != nil {
		return nil, fmt.Errorf("download error: %w", err)
	}

	res := &ExportResult{Archive: a, Path: path, Bytes: n}
	if len(passphrase) > 0 {
		if res.Bytes, err = cryptox.SealFile(path, passphrase); err != nil {
			return nil, fmt.Errorf("encrypt error: %w", err)
		}
		res.Encrypted = true
	}
	return res, nil
}
