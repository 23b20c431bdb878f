// Package transport is the remote blob store capability the sync engine
// talks to, plus the factory that picks a backend from the settings.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/transport/objectstore"
	"github.com/dmitrijs2005/scrapsync/internal/transport/webdav"
)

// Transport gets and puts whole named blobs.
type Transport interface {
	// Get returns (nil, false, nil) when name does not exist remotely.
	Get(ctx context.Context, name string) ([]byte, bool, error)
	// Put creates or overwrites name.
	Put(ctx context.Context, name string, data []byte) error
	// TestConnection verifies that credentials work and the target is usable.
	TestConnection(ctx context.Context) error
}

type Options struct {
	Timeout time.Duration
	Logger  logging.Logger
	// HTTPClient overrides the WebDAV HTTP client.
	HTTPClient *http.Client
}

// New builds the backend selected by s.SyncProvider. Missing credentials
// fail with common.ErrConfiguration before any network call.
func New(ctx context.Context, s models.Settings, opts Options) (Transport, error) {
	switch s.Provider() {
	case models.ProviderWebDAV:
		c, err := webdav.New(webdav.Config{
			URL:      s.WebDAVSettings.URL,
			User:     s.WebDAVSettings.User,
			Password: s.WebDAVSettings.Password,
			Timeout:  opts.Timeout,
		}, opts.HTTPClient, opts.Logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case models.ProviderS3:
		c, err := objectstore.New(ctx, objectstore.Config{
			Endpoint:  s.S3Settings.Endpoint,
			Region:    s.S3Settings.Region,
			Bucket:    s.S3Settings.Bucket,
			AccessKey: s.S3Settings.AccessKey,
			SecretKey: s.S3Settings.SecretKey,
			Timeout:   opts.Timeout,
		}, opts.Logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unknown sync provider %q", common.ErrConfiguration, s.SyncProvider)
	}
}
