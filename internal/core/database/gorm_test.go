package database

import (
	"errors"
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsed(t *testing.T, dsn string) *mysqldrv.Config {
	t.Helper()
	c, err := mysqldrv.ParseDSN(dsn)
	require.NoError(t, err)
	return c
}

func TestNormalizeMySQLDSN(t *testing.T) {
	t.Run("native dsn keeps params", func(t *testing.T) {
		out, err := normalizeMySQLDSN("app:secret@tcp(db:3306)/users?charset=latin1", "", "")
		require.NoError(t, err)
		c := parsed(t, out)
		assert.Equal(t, "app", c.User)
		assert.Equal(t, "secret", c.Passwd)
		assert.Equal(t, "db:3306", c.Addr)
		assert.Equal(t, "users", c.DBName)
		assert.True(t, c.ParseTime)
		assert.Equal(t, "latin1", c.Params["charset"])
	})

	t.Run("native dsn with credential override", func(t *testing.T) {
		out, err := normalizeMySQLDSN("tcp(127.0.0.1:3306)/user_admin", "root", "pw")
		require.NoError(t, err)
		c := parsed(t, out)
		assert.Equal(t, "root", c.User)
		assert.Equal(t, "pw", c.Passwd)
		assert.Equal(t, "utf8mb4", c.Params["charset"])
	})

	t.Run("jdbc url", func(t *testing.T) {
		out, err := normalizeMySQLDSN(
			"jdbc:mysql://db:3306/users?useSSL=false&serverTimezone=UTC&characterEncoding=utf8&useUnicode=true",
			"app", "secret")
		require.NoError(t, err)
		c := parsed(t, out)
		assert.Equal(t, "app", c.User)
		assert.Equal(t, "tcp", c.Net)
		assert.Equal(t, "db:3306", c.Addr)
		assert.Equal(t, "users", c.DBName)
		assert.Equal(t, "false", c.TLSConfig)
		assert.Equal(t, "UTC", c.Loc.String())
		assert.Equal(t, "utf8", c.Params["charset"])
		assert.NotContains(t, c.Params, "useUnicode")
	})

	t.Run("credentials from url", func(t *testing.T) {
		out, err := normalizeMySQLDSN("mysql://root:pw@localhost:3306/admin", "", "")
		require.NoError(t, err)
		c := parsed(t, out)
		assert.Equal(t, "root", c.User)
		assert.Equal(t, "pw", c.Passwd)
		assert.Equal(t, "admin", c.DBName)
	})

	t.Run("bad timezone", func(t *testing.T) {
		_, err := normalizeMySQLDSN("mysql://db:3306/x?serverTimezone=Nowhere/Void", "", "")
		assert.Error(t, err)
	})
}

func TestMaskDSN(t *testing.T) {
	assert.Contains(t, maskDSN("app:secret@tcp(db:3306)/users"), "app:****@tcp(db:3306)/users")
	assert.Equal(t, "tcp(db:3306)/users", maskDSN("tcp(db:3306)/users"))
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(Opts{Driver: "oracle"})
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}
