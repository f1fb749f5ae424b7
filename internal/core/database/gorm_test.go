package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		user, pass string
		want       string
	}{
		{
			name: "native dsn untouched",
			in:   " root:pw@tcp(127.0.0.1:3306)/users?parseTime=true ",
			want: "root:pw@tcp(127.0.0.1:3306)/users?parseTime=true",
		},
		{
			name: "jdbc url",
			in:   "jdbc:mysql://root:pw@localhost:3306/users?useUnicode=true&characterEncoding=utf8&useSSL=false&serverTimezone=Asia%2FShanghai",
			want: "root:pw@tcp(localhost:3306)/users?charset=utf8&loc=Asia%2FShanghai&parseTime=true&tls=false",
		},
		{
			name: "url with overrides",
			in:   "mysql://a:b@db:3306/users",
			user: "svc", pass: "secret",
			want: "svc:secret@tcp(db:3306)/users?charset=utf8mb4&parseTime=true",
		},
		{
			name: "credentials from query",
			in:   "mysql://db:3306/users?user=q&password=w&useSSL=skip-verify",
			want: "q:w@tcp(db:3306)/users?charset=utf8mb4&parseTime=true&tls=skip-verify",
		},
		{
			name: "no credentials",
			in:   "mysql://db:3306/users?parseTime=false",
			want: "tcp(db:3306)/users?charset=utf8mb4&parseTime=false",
		},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/users", maskDSN("root:pw@tcp(db:3306)/users"))
	assert.Equal(t, "root@tcp(db:3306)/users", maskDSN("root@tcp(db:3306)/users"))
	assert.Equal(t, "tcp(db:3306)/users", maskDSN("tcp(db:3306)/users"))
}

func TestDialector(t *testing.T) {
	d, err := Dialector(Opts{Driver: "postgres", DSN: "postgres://localhost/users"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(Opts{Driver: "mysql", DSN: "mysql://root:pw@db:3306/users"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	_, err = Dialector(Opts{Driver: "oracle"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite"}, zap.NewNop())
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewLogger_BridgesToZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gl := NewLogger(zap.New(core), "warn")

	gl.Info(context.Background(), "hidden")
	gl.Warn(context.Background(), "slow query %d", 42)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "gorm", e.LoggerName)
	assert.Contains(t, e.Message, "slow query 42")
}

func openMock(t *testing.T, dial func(gorm.ConnPool) gorm.Dialector) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(dial(sqlDB), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	return db
}

func TestMigrator_MySQLUsesBinaryCollation(t *testing.T) {
	db := openMock(t, func(conn gorm.ConnPool) gorm.Dialector {
		return mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true})
	})

	v, ok := migrator(db).Get("gorm:table_options")
	require.True(t, ok)
	assert.Contains(t, v, "COLLATE=utf8mb4_bin")
	assert.Contains(t, v, "CHARSET=utf8mb4")
}

func TestMigrator_PostgresUntouched(t *testing.T) {
	db := openMock(t, func(conn gorm.ConnPool) gorm.Dialector {
		return postgres.New(postgres.Config{Conn: conn})
	})

	_, ok := migrator(db).Get("gorm:table_options")
	assert.False(t, ok)
}
