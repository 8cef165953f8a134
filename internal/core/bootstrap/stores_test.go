package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-role-admin/internal/core/config"
	"user-role-admin/internal/domain"
	"user-role-admin/internal/repo"
)

func memConfig() *config.Config {
	return &config.Config{Store: config.Store{Driver: "memory", DelayMS: 0}}
}

func TestOpenStores_Memory(t *testing.T) {
	s, err := OpenStores(context.Background(), memConfig(), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	users, err := s.Users.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, users)
	roles, err := s.Roles.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 3)

	assert.Nil(t, s.Cache)
	assert.NoError(t, s.Health(context.Background()))
}

func TestOpenStores_CacheWrapsUsers(t *testing.T) {
	cfg := memConfig()
	cfg.Store.CacheTTLSec = 30
	s, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.Cache)
	assert.IsType(t, &repo.CachedUserStore{}, s.Users)
	assert.NoError(t, s.Health(context.Background()))

	ctx := context.Background()
	before, err := s.Users.List(ctx)
	require.NoError(t, err)
	two := 2
	_, err = s.Users.Create(ctx, domain.UserDraft{Name: "fresh", Projects: &two, Role: domain.RoleViewer, Expiration: domain.NewDate(2099, 1, 1)})
	require.NoError(t, err)
	after, err := s.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
}

func TestOpenStores_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":7,"user":"solo","projects":1,"role":"Admin","status":"Active","expiration":"2030-01-01"}]`), 0o600))
	cfg := memConfig()
	cfg.Store.SeedFile = path

	s, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	users, _ := s.Users.List(context.Background())
	require.Len(t, users, 1)
	assert.Equal(t, int64(7), users[0].ID)

	cfg.Store.SeedFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = OpenStores(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenStores_UnsupportedDriver(t *testing.T) {
	cfg := memConfig()
	cfg.Store.Driver = "oracle"
	_, err := OpenStores(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenStores_SQLiteMigratesAndSeeds(t *testing.T) {
	cfg := memConfig()
	cfg.Store.Driver = "sqlite"
	cfg.DB = config.DB{
		DSN:          "file:" + filepath.Join(t.TempDir(), "admin.db") + "?_pragma=busy_timeout(5000)",
		MaxOpenConns: 2,
		MaxIdleConns: 2,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}
	ctx := context.Background()

	s, err := OpenStores(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repo.GormUserStore{}, s.Users)

	seed, err := repo.LoadUserSeed("")
	require.NoError(t, err)
	users, err := s.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(seed))
	roles, err := s.Roles.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRoles(), roles)
	require.NoError(t, s.Close())

	// 再开一次不会重复灌数据
	s, err = OpenStores(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	users, err = s.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(seed))
}
