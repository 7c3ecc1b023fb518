package fetcher

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/aide-analytics/aide-cli/internal/dataset"
)

// Load reads a dataset from a local path or an ftp:// URL.
func Load(ctx context.Context, location string, opts XLSXOptions) (*dataset.Frame, error) {
	if location == "" {
		return nil, eris.New("fetcher: empty dataset location")
	}
	if strings.HasPrefix(location, "ftp://") {
		return FetchFTP(ctx, location, opts)
	}
	return readLocal(location, opts)
}

// Optional is a dataset that may legitimately be absent. It keeps the
// reason around so "not configured" and "failed to load" stay
// distinguishable.
type Optional struct {
	Frame  *dataset.Frame
	Reason string
}

// Present reports whether the dataset loaded.
func (o Optional) Present() bool { return o.Frame != nil }

// LoadOptional loads a dataset that commands treat as best-effort. An
// empty location and a load failure both produce an absent result with
// a reason, never an error.
func LoadOptional(ctx context.Context, location string, opts XLSXOptions) Optional {
	if location == "" {
		return Optional{Reason: "not configured"}
	}
	f, err := Load(ctx, location, opts)
	if err != nil {
		return Optional{Reason: eris.ToString(err, false)}
	}
	return Optional{Frame: f}
}
