package repositories_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/npm"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/pypi"
)

// newRouter builds the real router over stub registry servers so both the
// routing and the cache behavior are exercised end to end.
func newRouter(t *testing.T, handler http.HandlerFunc) *repositories.RegistryRouter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return repositories.NewRegistryRouter(
		pypi.NewPyPIRegistryRepositoryWithBaseURL(server.URL),
		npm.NewNpmRegistryRepositoryWithBaseURL(server.URL),
	)
}

func TestCachedRegistryRepositoryFetch(t *testing.T) {
	t.Parallel()

	t.Run("should hit the upstream once per package", func(t *testing.T) {
		t.Parallel()

		// given
		var calls atomic.Int32
		router := newRouter(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`{"info": {"version": "1.0.0"}, "releases": {}}`))
		})
		cached, err := repositories.NewCachedRegistryRepository(router)
		require.NoError(t, err)

		// when
		first, err1 := cached.Fetch(context.Background(), "requests", entities.EcosystemPyPI)
		second, err2 := cached.Fetch(context.Background(), "requests", entities.EcosystemPyPI)

		// then
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, int32(1), calls.Load())
		assert.Same(t, first, second)
	})

	t.Run("should cache a failure as missing metadata", func(t *testing.T) {
		t.Parallel()

		// given
		var calls atomic.Int32
		router := newRouter(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		})
		cached, err := repositories.NewCachedRegistryRepository(router)
		require.NoError(t, err)

		// when
		first, err1 := cached.Fetch(context.Background(), "gone", entities.EcosystemNpm)
		second, err2 := cached.Fetch(context.Background(), "gone", entities.EcosystemNpm)

		// then
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Nil(t, first)
		assert.Nil(t, second)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("should key the cache by ecosystem and name", func(t *testing.T) {
		t.Parallel()

		// given
		var calls atomic.Int32
		router := newRouter(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Path == "/chalk" {
				_, _ = w.Write([]byte(`{"dist-tags": {"latest": "5.0.0"}, "time": {}}`))
				return
			}
			_, _ = w.Write([]byte(`{"info": {"version": "1.0.0"}, "releases": {}}`))
		})
		cached, err := repositories.NewCachedRegistryRepository(router)
		require.NoError(t, err)

		// when
		pyMeta, err1 := cached.Fetch(context.Background(), "chalk", entities.EcosystemPyPI)
		npmMeta, err2 := cached.Fetch(context.Background(), "chalk", entities.EcosystemNpm)

		// then
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, entities.EcosystemPyPI, pyMeta.Ecosystem)
		assert.Equal(t, entities.EcosystemNpm, npmMeta.Ecosystem)
	})
}

func TestRegistryRouterFetch(t *testing.T) {
	t.Parallel()

	t.Run("should reject an unknown ecosystem", func(t *testing.T) {
		t.Parallel()

		// given
		router := repositories.NewRegistryRouter(
			pypi.NewPyPIRegistryRepository(),
			npm.NewNpmRegistryRepository(),
		)

		// when
		meta, err := router.Fetch(context.Background(), "pkg", entities.Ecosystem("cargo"))

		// then
		require.Error(t, err)
		assert.Nil(t, meta)
		assert.Contains(t, err.Error(), "unknown ecosystem")
	})
}
