package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kinshipapp/kinship-server/internal/auth"
	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/id"
	"github.com/kinshipapp/kinship-server/internal/media/avatars"
	"github.com/kinshipapp/kinship-server/internal/search"
	"github.com/kinshipapp/kinship-server/internal/store"
	"github.com/kinshipapp/kinship-server/internal/store/sqlite"
)

// testEnv bundles the shared fixtures service tests need.
type testEnv struct {
	store   store.Store
	index   *search.SearchIndex
	avatars *avatars.Processor
	logger  *slog.Logger
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kinship-service-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testStore, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: tmpDir,
		Logger:   logger,
	})
	require.NoError(t, err)

	avatarStorage, err := avatars.NewStorage(filepath.Join(tmpDir, "avatars"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = index.Close()
		_ = testStore.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &testEnv{
		store:   testStore,
		index:   index,
		avatars: avatars.NewProcessor(avatarStorage, logger),
		logger:  logger,
	}
}

func (e *testEnv) contactService() *ContactService {
	return NewContactService(e.store, e.index, e.avatars, e.logger)
}

func (e *testEnv) searchService() *SearchService {
	return NewSearchService(e.store, e.index, e.logger)
}

// testAvatarPNG renders a small gradient image for avatar tests.
func testAvatarPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 160, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func createTestOwner(t *testing.T, s store.Store) *domain.User {
	t.Helper()

	user := &domain.User{
		Entity: domain.Entity{
			ID: id.MustGenerate(id.PrefixUser),
		},
		Email:        id.MustGenerate("mail") + "@example.com",
		PasswordHash: "not-a-real-hash",
		DisplayName:  "Test Owner",
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func newTestTokenService(t *testing.T) *auth.TokenService {
	t.Helper()

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)

	ts, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	return ts
}
