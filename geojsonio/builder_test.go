package geojsonio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls       int
	filename    string
	description string
	content     string
	id          string
	err         error
}

func (s *fakeStore) Create(_ context.Context, filename, description, content string) (string, error) {
	s.calls++
	s.filename = filename
	s.description = description
	s.content = content
	return s.id, s.err
}

type recordingObserver struct {
	built   []Kind
	failed  []ErrorCode
	created int
}

func (o *recordingObserver) ReferenceBuilt(k Kind)       { o.built = append(o.built, k) }
func (o *recordingObserver) ReferenceFailed(c ErrorCode) { o.failed = append(o.failed, c) }
func (o *recordingObserver) StoreCreated(time.Duration)  { o.created++ }

func TestBuildReference_Point(t *testing.T) {
	store := &fakeStore{id: "unused"}
	b := New(WithStore(store))

	payload := `{"type":"Point","coordinates":[1,2]}`
	u, err := b.BuildReference(context.Background(), payload, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, "http://geojson.io/#data=data:application/json,%7B%22type%22%3A%22Point%22%2C%22coordinates%22%3A%5B1%2C2%5D%7D", u)
	assert.True(t, strings.HasPrefix(u, "http://geojson.io/#data=data:application/json,"))
	assert.Equal(t, 0, store.calls)
}

func TestBuildReference_InlineNeverContactsStore(t *testing.T) {
	payloads := []string{
		"",
		"{}",
		`{"name":"Zürich Hauptbahnhof","note":"a b+c&d=e#f%g"}`,
		strings.Repeat("x", InlineLimit),
	}

	for _, p := range payloads {
		store := &fakeStore{id: "abc"}
		b := New(WithStore(store))

		u, err := b.BuildReference(context.Background(), p, BuildOptions{})
		require.NoError(t, err)
		assert.Equal(t, 0, store.calls)

		ref, err := ParseReference(u)
		require.NoError(t, err)
		assert.Equal(t, KindInline, ref.Kind)
		assert.Equal(t, p, ref.Data)
	}
}

func TestBuildReference_Boundary(t *testing.T) {
	store := &fakeStore{id: "f00d"}
	b := New(WithStore(store))

	u, err := b.BuildReference(context.Background(), strings.Repeat("a", InlineLimit), BuildOptions{})
	require.NoError(t, err)
	assert.Contains(t, u, "#data=")
	assert.Equal(t, 0, store.calls)

	u, err = b.BuildReference(context.Background(), strings.Repeat("a", InlineLimit+1), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "http://geojson.io/#id=gist:/f00d", u)
	assert.Equal(t, 1, store.calls)
}

func TestBuildReference_RemoteStore(t *testing.T) {
	store := &fakeStore{id: "4f2a9c"}
	obs := &recordingObserver{}
	b := New(WithStore(store), WithObserver(obs), WithDescription("roads"))

	payload := strings.Repeat("b", 200_000)
	u, err := b.BuildReference(context.Background(), payload, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, "http://geojson.io/#id=gist:/4f2a9c", u)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, DefaultFilename, store.filename)
	assert.Equal(t, "roads", store.description)
	assert.Equal(t, payload, store.content)
	assert.Equal(t, []Kind{KindGist}, obs.built)
	assert.Equal(t, 1, obs.created)
}

func TestBuildReference_RemoteLimitIsInclusive(t *testing.T) {
	store := &fakeStore{id: "big"}
	b := New(WithStore(store))

	u, err := b.BuildReference(context.Background(), strings.Repeat("c", RemoteLimit), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "http://geojson.io/#id=gist:/big", u)
	assert.Equal(t, 1, store.calls)
}

func TestBuildReference_Oversize(t *testing.T) {
	store := &fakeStore{id: "never"}
	obs := &recordingObserver{}
	b := New(WithStore(store), WithObserver(obs))

	_, err := b.BuildReference(context.Background(), strings.Repeat("d", RemoteLimit+1), BuildOptions{})
	require.Error(t, err)
	assert.True(t, IsOversize(err))
	assert.Equal(t, 0, store.calls)
	assert.Equal(t, []ErrorCode{ErrOversize}, obs.failed)
}

func TestBuildReference_RemoteStoreDisabled(t *testing.T) {
	store := &fakeStore{id: "never"}
	b := New(WithStore(store))

	_, err := b.BuildReference(context.Background(), strings.Repeat("e", InlineLimit+1), BuildOptions{DisableRemoteStore: true})
	require.Error(t, err)
	assert.True(t, IsOversize(err))
	assert.Equal(t, 0, store.calls)
}

func TestBuildReference_StoreUnavailable(t *testing.T) {
	b := New()

	_, err := b.BuildReference(context.Background(), strings.Repeat("f", 200_000), BuildOptions{})
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
	assert.False(t, IsOversize(err))
}

func TestBuildReference_StoreRequestError(t *testing.T) {
	cause := errors.New("quota exceeded")
	store := &fakeStore{err: cause}
	b := New(WithStore(store))

	_, err := b.BuildReference(context.Background(), strings.Repeat("g", 200_000), BuildOptions{})
	require.Error(t, err)
	assert.True(t, IsStoreRequest(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, store.calls)
}

func TestBuildReference_EmptyIdentifier(t *testing.T) {
	b := New(WithStore(&fakeStore{}))

	_, err := b.BuildReference(context.Background(), strings.Repeat("h", 200_000), BuildOptions{})
	assert.True(t, IsStoreRequest(err))
}

func TestBuildReference_BaseDomain(t *testing.T) {
	b := New(WithBaseDomain("http://localhost:8080/"), WithStore(&fakeStore{id: "x1"}))

	u, err := b.BuildReference(context.Background(), "{}", BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/#data=data:application/json,%7B%7D", u)

	u, err = b.BuildReference(context.Background(), strings.Repeat("i", 200_000), BuildOptions{BaseDomain: "https://example.org/"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/#id=gist:/x1", u)
}

func TestOpen(t *testing.T) {
	var opened []string
	b := New(WithOpener(func(u string) error {
		opened = append(opened, u)
		return nil
	}))

	u, err := b.Open(context.Background(), "{}", BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{u}, opened)
}

func TestOpen_OpenerFailureIsIgnored(t *testing.T) {
	b := New(WithOpener(func(string) error {
		return errors.New("no display")
	}))

	u, err := b.Open(context.Background(), "{}", BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, InlineURL(DefaultBaseDomain, "{}"), u)
}

func TestOpen_BuildErrorSkipsOpener(t *testing.T) {
	called := false
	b := New(WithOpener(func(string) error {
		called = true
		return nil
	}))

	_, err := b.Open(context.Background(), strings.Repeat("j", InlineLimit+1), BuildOptions{})
	assert.True(t, IsStoreUnavailable(err))
	assert.False(t, called)
}
