package aliasql

import (
	"database/sql"
	"time"

	"github.com/skuid/aliasql/errors"
	sqltrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/database/sql"
)

// ConnectionProps describes how to reach the database
type ConnectionProps struct {
	ConnString   string
	Driver       string
	ServiceName  *string
	MaxIdleConns *int
	MaxOpenConns *int
	MaxIdleTime  *int
	MaxLifeTime  *int
}

func testConnection(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	return nil
}

/*
NewConnection creates a database connection using the provided arguments. When
a service name is given, the connection is opened through the DataDog tracer.
*/
func NewConnection(props ConnectionProps) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(props.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	var db *sql.DB
	if props.ServiceName != nil {
		drv, err := dialect.Driver()
		if err != nil {
			return nil, Dialect{}, err
		}
		sqltrace.Register(
			dialect.DriverName,
			drv,
			sqltrace.WithServiceName(*props.ServiceName),
		)
		db, err = sqltrace.Open(dialect.DriverName, props.ConnString)
	} else {
		db, err = sql.Open(dialect.DriverName, props.ConnString)
	}
	if err != nil {
		return nil, Dialect{}, errors.Wrapf(err, "opening %s connection", dialect)
	}

	if props.MaxIdleConns != nil {
		db.SetMaxIdleConns(*props.MaxIdleConns)
	}

	if props.MaxIdleTime != nil {
		db.SetConnMaxIdleTime(time.Duration(*props.MaxIdleTime * int(time.Second)))
	}

	if props.MaxLifeTime != nil {
		db.SetConnMaxLifetime(time.Duration(*props.MaxLifeTime * int(time.Second)))
	}

	if props.MaxOpenConns != nil {
		db.SetMaxOpenConns(*props.MaxOpenConns)
	}

	if err := testConnection(db); err != nil {
		return nil, Dialect{}, errors.Wrapf(err, "connecting to %s", dialect)
	}

	return db, dialect, nil
}
