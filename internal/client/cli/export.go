package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
)

const encryptFlag = "--encrypt"

// openSealedFile is a test seam for cryptox.OpenFile.
var openSealedFile = cryptox.OpenFile

func defaultExportPath(now time.Time, encrypted bool) string {
	if encrypted {
		return fmt.Sprintf("notekeeper-%s.nkx", now.Format("20060102-150405"))
	}
	return fmt.Sprintf("notekeeper-%s.json", now.Format("20060102-150405"))
}

// Export asks the server for an archive of all notes and saves it locally:
// "export [path] [--encrypt]". With --encrypt the file is sealed with a
// passphrase read from the terminal.
func (a *App) Export(ctx context.Context, args []string) error {
	var (
		path    string
		encrypt bool
	)
	for _, arg := range args {
		if arg == encryptFlag {
			encrypt = true
			continue
		}
		path = arg
	}
	if path == "" {
		path = defaultExportPath(time.Now(), encrypt)
	}

	var passphrase []byte
	if encrypt {
		var err error
		if passphrase, err = getPassword(a.out); err != nil {
			return err
		}
		defer common.WipeByteArray(passphrase)
		if len(passphrase) == 0 {
			a.printf("Passphrase must not be empty\n")
			return errUsage
		}
	}

	res, err := a.exportService.Export(ctx, path, passphrase)
	if err != nil {
		return err
	}
	a.printf("Exported %d notes and %d tags to %s (%d bytes)\n",
		res.Archive.Notes, res.Archive.Tags, res.Path, res.Bytes)
	if res.Encrypted {
		a.printf("The file is encrypted; use 'decrypt %s <out>' to read it\n", res.Path)
	}
	return nil
}

// Decrypt opens an archive written by "export --encrypt":
// "decrypt <in> <out>".
func (a *App) Decrypt(ctx context.Context, args []string) error {
	if len(args) != 2 {
		a.printf("Usage: decrypt <in> <out>\n")
		return errUsage
	}

	passphrase, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	n, err := openSealedFile(args[0], args[1], passphrase)
	if err != nil {
		return err
	}
	a.printf("Decrypted %s to %s (%d bytes)\n", args[0], args[1], n)
	return nil
}
