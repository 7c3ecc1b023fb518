package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/dataset"
)

// FetchFTP downloads a dataset file from an ftp:// URL to a temp file
// and parses it by extension. Credentials come from the URL userinfo;
// anonymous login is used when absent.
func FetchFTP(ctx context.Context, rawURL string, opts XLSXOptions) (*dataset.Frame, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: parse url %s", rawURL)
	}
	if u.Scheme != "ftp" {
		return nil, eris.Errorf("ftp: unsupported scheme %q", u.Scheme)
	}
	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: dial %s", addr)
	}
	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, eris.Wrapf(err, "ftp: login as %s", user)
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: retrieve %s", u.Path)
	}
	defer resp.Close()

	tmp, err := os.CreateTemp("", "aide-dataset-*"+filepath.Ext(u.Path))
	if err != nil {
		return nil, eris.Wrap(err, "ftp: create temp file")
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: download %s", u.Path)
	}
	zap.L().Debug("ftp dataset downloaded",
		zap.String("path", u.Path), zap.Int64("bytes", n))

	return readLocal(tmp.Name(), opts)
}

func readLocal(path string, opts XLSXOptions) (*dataset.Frame, error) {
	switch filepath.Ext(path) {
	case ".xlsx":
		return ReadXLSX(path, opts)
	case ".csv":
		return ReadCSV(path)
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", filepath.Ext(path))
	}
}
