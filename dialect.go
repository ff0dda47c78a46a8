package aliasql

import (
	stdsql "database/sql"
	"database/sql/driver"
	"strings"

	sql "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // registers "postgres"
	"github.com/skuid/aliasql/errors"
	"github.com/skuid/aliasql/tags"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// Dialect holds what aliasql needs to know about a database driver
type Dialect struct {
	Name        string
	DriverName  string
	Placeholder sql.PlaceholderFormat
	columnTypes map[string]string
}

// Postgres talks to PostgreSQL through lib/pq
var Postgres = Dialect{
	Name:        "postgres",
	DriverName:  "postgres",
	Placeholder: sql.Dollar,
}

// SQLite talks to an embedded database through modernc.org/sqlite
var SQLite = Dialect{
	Name:        "sqlite",
	DriverName:  "sqlite",
	Placeholder: sql.Question,
	columnTypes: map[string]string{
		"JSONB":            "TEXT",
		"BYTEA":            "BLOB",
		"DOUBLE PRECISION": "REAL",
	},
}

// DialectFor returns the dialect for a database/sql driver name
func DialectFor(driverName string) (Dialect, error) {
	switch strings.ToLower(driverName) {
	case "", "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, errors.Newf(errors.ErrUnsupportedDialect, "no dialect for driver '%s'", driverName)
}

// ColumnType returns the column type to declare for field in CREATE TABLE
func (d Dialect) ColumnType(field tags.FieldMetadata) string {
	sqlType := field.GetSQLType()
	if override, ok := d.columnTypes[strings.ToUpper(sqlType)]; ok {
		return override
	}
	return sqlType
}

// Driver returns the driver registered with database/sql under DriverName
func (d Dialect) Driver() (driver.Driver, error) {
	// Open only validates the driver name, it does not connect
	db, err := stdsql.Open(d.DriverName, "")
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Driver(), nil
}

func (d Dialect) String() string {
	return d.Name
}

// SQLiteDSN returns a connection string for the database file at path that
// waits on locks held by other connections instead of failing at once.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)"
}
