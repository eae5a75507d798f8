package geojsonio

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultBaseDomain is the public geojson.io viewer.
	DefaultBaseDomain = "http://geojson.io/"

	// InlineLimit is the largest payload, in bytes, embedded directly in the URL.
	InlineLimit = 150_000

	// RemoteLimit is the largest payload, in bytes, accepted by the remote store.
	RemoteLimit = 10_000_000

	// DefaultFilename is the name of the single file in a created gist.
	DefaultFilename = "data.geojson"

	// DefaultDescription is the description of a created gist.
	DefaultDescription = ""
)

// RemoteStore persists a payload as a single named file and returns the
// identifier of the stored object.
type RemoteStore interface {
	Create(ctx context.Context, filename, description, content string) (string, error)
}

// OpenFunc opens url in a viewer, typically the default browser.
type OpenFunc func(url string) error

// Observer is notified of every build outcome.
type Observer interface {
	ReferenceBuilt(kind Kind)
	ReferenceFailed(code ErrorCode)
	StoreCreated(elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ReferenceBuilt(Kind)        {}
func (nopObserver) ReferenceFailed(ErrorCode)  {}
func (nopObserver) StoreCreated(time.Duration) {}

// Builder turns GeoJSON payloads into viewer URLs.
type Builder struct {
	baseDomain  string
	filename    string
	description string
	store       RemoteStore
	open        OpenFunc
	logger      *slog.Logger
	observer    Observer
}

// Option configures a Builder.
type Option func(*Builder)

// WithStore sets the remote store used for payloads over InlineLimit.
// Without a store such payloads fail with ErrStoreUnavailable.
func WithStore(s RemoteStore) Option {
	return func(b *Builder) {
		b.store = s
	}
}

// WithOpener sets the function Open hands the URL to.
func WithOpener(fn OpenFunc) Option {
	return func(b *Builder) {
		b.open = fn
	}
}

// WithBaseDomain sets the default viewer URL.
func WithBaseDomain(domain string) Option {
	return func(b *Builder) {
		b.baseDomain = domain
	}
}

// WithFilename sets the filename of created gists.
func WithFilename(name string) Option {
	return func(b *Builder) {
		b.filename = name
	}
}

// WithDescription sets the description of created gists.
func WithDescription(desc string) Option {
	return func(b *Builder) {
		b.description = desc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithObserver sets the observer notified of build outcomes.
func WithObserver(o Observer) Option {
	return func(b *Builder) {
		b.observer = o
	}
}

// New creates a Builder with the given options.
func New(opts ...Option) *Builder {
	b := &Builder{
		baseDomain:  DefaultBaseDomain,
		filename:    DefaultFilename,
		description: DefaultDescription,
		logger:      slog.Default(),
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildOptions are per-call overrides. The zero value allows the remote store
// and uses the builder's base domain.
type BuildOptions struct {
	DisableRemoteStore bool
	BaseDomain         string
}

// BuildReference returns a viewer URL for payload.
//
// Payloads up to InlineLimit bytes are embedded in the URL. Larger payloads up
// to RemoteLimit are stored remotely, unless opts.DisableRemoteStore is set,
// and the URL references the stored object. Anything else fails with ErrOversize.
func (b *Builder) BuildReference(ctx context.Context, payload string, opts BuildOptions) (string, error) {
	base := opts.BaseDomain
	if base == "" {
		base = b.baseDomain
	}
	allowRemoteStore := !opts.DisableRemoteStore

	switch size := len(payload); {
	case size <= InlineLimit:
		b.logger.Debug("building inline reference", "size", size)
		b.observer.ReferenceBuilt(KindInline)
		return InlineURL(base, payload), nil
	case allowRemoteStore && size <= RemoteLimit:
		id, err := b.createRemote(ctx, payload)
		if err != nil {
			return "", b.fail(err)
		}
		b.logger.Debug("building gist reference", "size", size, "id", id)
		b.observer.ReferenceBuilt(KindGist)
		return GistURL(base, id), nil
	case !allowRemoteStore && size <= RemoteLimit:
		return "", b.fail(&Error{
			Code:    ErrOversize,
			Message: fmt.Sprintf("payload of %d bytes exceeds inline limit of %d bytes and remote store is disabled", size, InlineLimit),
		})
	default:
		return "", b.fail(&Error{
			Code:    ErrOversize,
			Message: fmt.Sprintf("payload of %d bytes exceeds maximum size of %d bytes", size, RemoteLimit),
		})
	}
}

func (b *Builder) createRemote(ctx context.Context, payload string) (string, error) {
	if b.store == nil {
		return "", &Error{Code: ErrStoreUnavailable, Message: "no remote store configured"}
	}

	start := time.Now()
	storedObject, err := b.store.Create(ctx, b.filename, b.description, payload)
	if err != nil {
		return "", &Error{Code: ErrStoreRequest, Message: "creating remote object", Err: err}
	}
	b.observer.StoreCreated(time.Since(start))

	if storedObject == "" {
		return "", &Error{Code: ErrStoreRequest, Message: "remote store returned an empty identifier"}
	}
	return storedObject, nil
}

func (b *Builder) fail(err error) error {
	b.observer.ReferenceFailed(CodeOf(err))
	return err
}

// Open builds the reference for payload and hands it to the configured opener.
// A failing opener is logged, not returned.
func (b *Builder) Open(ctx context.Context, payload string, opts BuildOptions) (string, error) {
	u, err := b.BuildReference(ctx, payload, opts)
	if err != nil {
		return "", err
	}

	if b.open == nil {
		b.logger.Debug("no opener configured")
		return u, nil
	}
	if err := b.open(u); err != nil {
		b.logger.Warn("could not open browser", "error", err)
	}
	return u, nil
}
