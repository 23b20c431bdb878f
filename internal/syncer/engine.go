// Package syncer reconciles the local store with a single remote snapshot
// using whole-snapshot last-writer-wins: the side with the larger timestamp
// replaces the other. It also implements manual export and import, which
// share the download merge.
//
// Versioning is deliberately coarse. An edit made on a device whose marker
// is older than the remote snapshot is overwritten item by item when that
// device downloads; only entries the remote does not know survive.
package syncer

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/snapshot"
	"github.com/dmitrijs2005/scrapsync/internal/store"
	"github.com/dmitrijs2005/scrapsync/internal/transport"
)

// RemoteFileName is the one blob every device reads and writes.
const RemoteFileName = "inkread_data.json"

// Store is what the engine needs from the local store.
type Store interface {
	snapshot.Source
	ApplySnapshot(ctx context.Context, in store.MergeInput) (store.MergeReport, error)
}

// TransportFactory builds the remote for the given settings.
type TransportFactory func(ctx context.Context, s models.Settings) (transport.Transport, error)

// DefaultTransport builds transports with transport.New.
func DefaultTransport(opts transport.Options) TransportFactory {
	return func(ctx context.Context, s models.Settings) (transport.Transport, error) {
		return transport.New(ctx, s, opts)
	}
}

// Result describes one completed run.
type Result struct {
	Outcome         Outcome
	LocalTimestamp  int64
	RemoteTimestamp int64
	// Items is the number of item bodies merged on a download.
	Items int
}

type Engine struct {
	store        Store
	codec        *snapshot.Codec
	newTransport TransportFactory
	log          logging.Logger

	// running admits one sync, push, pull or import at a time.
	running sync.Mutex
}

func New(st Store, newTransport TransportFactory, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		store:        st,
		codec:        snapshot.NewCodec(st, log),
		newTransport: newTransport,
		log:          log.With("component", "syncer"),
	}
}

func (e *Engine) begin() error {
	if !e.running.TryLock() {
		return common.ErrSyncInProgress
	}
	return nil
}

// local builds the local snapshot and its encoded form. The returned
// timestamp is the one the encoded document carries.
func (e *Engine) local(ctx context.Context) (*models.Document, []byte, int64, error) {
	doc, err := e.codec.Encode(ctx)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("encode snapshot: %w", err)
	}
	data, err := snapshot.Marshal(doc)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("marshal snapshot: %w", err)
	}
	return doc, data, doc.Timestamp, nil
}

// Sync compares the local and remote snapshot timestamps and uploads,
// downloads or does nothing. A failed remote call leaves the local store
// untouched.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	if err := e.begin(); err != nil {
		return Result{}, err
	}
	defer e.running.Unlock()

	doc, data, localTs, err := e.local(ctx)
	if err != nil {
		return Result{}, err
	}
	tr, err := e.newTransport(ctx, doc.Settings)
	if err != nil {
		return Result{}, err
	}

	raw, exists, err := tr.Get(ctx, RemoteFileName)
	if err != nil {
		return Result{}, err
	}

	res := Result{LocalTimestamp: localTs}
	var remote *models.Document
	if exists {
		remote, err = snapshot.Decode(raw)
		if err != nil {
			return Result{}, fmt.Errorf("remote snapshot: %w", err)
		}
		res.RemoteTimestamp = remote.Timestamp
	}

	res.Outcome = Decide(localTs, res.RemoteTimestamp, exists)
	if res.Outcome == OutcomeUploaded && adoptRemote(len(doc.Index.Items), remote) {
		res.Outcome = OutcomeDownloaded
	}
	switch res.Outcome {
	case OutcomeInitialUpload, OutcomeUploaded:
		if err := tr.Put(ctx, RemoteFileName, data); err != nil {
			return Result{}, err
		}
	case OutcomeDownloaded:
		rep, err := e.store.ApplySnapshot(ctx, mergeInput(remote))
		if err != nil {
			return Result{}, err
		}
		res.Items = rep.Items
	}

	e.log.Info(ctx, "sync finished", "outcome", res.Outcome, "local_ts", res.LocalTimestamp, "remote_ts", res.RemoteTimestamp)
	return res, nil
}

// Push uploads the local snapshot unconditionally.
func (e *Engine) Push(ctx context.Context) (Result, error) {
	if err := e.begin(); err != nil {
		return Result{}, err
	}
	defer e.running.Unlock()

	doc, data, _, err := e.local(ctx)
	if err != nil {
		return Result{}, err
	}
	tr, err := e.newTransport(ctx, doc.Settings)
	if err != nil {
		return Result{}, err
	}
	if err := tr.Put(ctx, RemoteFileName, data); err != nil {
		return Result{}, err
	}

	e.log.Info(ctx, "snapshot pushed", "ts", doc.Timestamp)
	return Result{Outcome: OutcomeUploaded, LocalTimestamp: doc.Timestamp, RemoteTimestamp: doc.Timestamp}, nil
}

// Pull downloads the remote snapshot and merges it regardless of
// timestamps.
func (e *Engine) Pull(ctx context.Context) (Result, error) {
	if err := e.begin(); err != nil {
		return Result{}, err
	}
	defer e.running.Unlock()

	settings, err := e.store.Settings(ctx)
	if err != nil {
		return Result{}, err
	}
	tr, err := e.newTransport(ctx, settings)
	if err != nil {
		return Result{}, err
	}
	raw, exists, err := tr.Get(ctx, RemoteFileName)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{Outcome: OutcomeRemoteEmpty}, nil
	}

	remote, err := snapshot.Decode(raw)
	if err != nil {
		return Result{}, fmt.Errorf("remote snapshot: %w", err)
	}
	rep, err := e.store.ApplySnapshot(ctx, mergeInput(remote))
	if err != nil {
		return Result{}, err
	}

	e.log.Info(ctx, "snapshot pulled", "ts", remote.Timestamp, "items", rep.Items)
	return Result{Outcome: OutcomeDownloaded, RemoteTimestamp: remote.Timestamp, Items: rep.Items}, nil
}

// TestConnection checks the remote configured in the stored settings.
func (e *Engine) TestConnection(ctx context.Context) error {
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return err
	}
	return e.TestSettings(ctx, settings)
}

// TestSettings checks a remote before its settings are saved.
func (e *Engine) TestSettings(ctx context.Context, s models.Settings) error {
	tr, err := e.newTransport(ctx, s)
	if err != nil {
		return err
	}
	return tr.TestConnection(ctx)
}

func mergeInput(doc *models.Document) store.MergeInput {
	in := store.MergeInput{
		Items:        doc.Articles,
		Index:        doc.Index.Items,
		HasIndex:     doc.HasIndex,
		LastModified: doc.Timestamp,
	}
	if doc.HasSettings {
		s := doc.Settings
		in.Settings = &s
	}
	return in
}
