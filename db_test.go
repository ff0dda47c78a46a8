package aliasql_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/hashicorp/go-multierror"
	"github.com/skuid/aliasql"
	"github.com/skuid/aliasql/alias"
	"github.com/skuid/aliasql/errors"
	"github.com/skuid/aliasql/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func openSQLite(t *testing.T) *aliasql.Db {
	db, err := aliasql.Open(
		aliasql.ConnectionProps{
			Driver:     "sqlite",
			ConnString: aliasql.SQLiteDSN(filepath.Join(t.TempDir(), "aliasql.db")),
		},
		aliasql.WithBinder(alias.NewBinder(zap.NewNop())),
		aliasql.WithLogger(zap.NewNop()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTestObjects(t *testing.T, names ...string) []testdata.TestObject {
	fixtures, err := aliasql.LoadFixturesFromFiles(names, "./testdata/fixtures", reflect.TypeOf(testdata.TestObject{}))
	require.NoError(t, err)
	return fixtures.([]testdata.TestObject)
}

func TestSQLiteRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := openSQLite(t)

	fixtures := loadTestObjects(t, "Simple", "Simple2")

	require.NoError(t, db.CreateTable(ctx, testdata.TestObject{}))
	require.NoError(t, db.InsertAll(ctx, fixtures))

	obj := &testdata.TestObject{}
	results, err := aliasql.From(db, obj).OrderBy(&obj.ID).Select(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, want := range fixtures {
		got := results[i]
		assert.Equal(want.ID, got.ID)
		assert.Equal(want.Name, got.Name)
		assert.Equal(want.Type, got.Type)
		assert.Equal(want.IsActive, got.IsActive)
		assert.Equal(want.Rating, got.Rating)
		assert.Equal(want.Nickname, got.Nickname)
		assert.Equal(want.Config, got.Config)
		assert.True(want.CreatedDate.Equal(got.CreatedDate), "created_at %v != %v", want.CreatedDate, got.CreatedDate)
		assert.Empty(got.Scratch)
	}

	count, err := aliasql.From(db, obj).
		Where(&obj.IsActive).Is(true).
		And(&obj.Rating).AtLeast(4).
		SelectCount(ctx)
	require.NoError(t, err)
	assert.Equal(int64(1), count)

	nicknamed, err := aliasql.From(db, obj).Where(&obj.Nickname).IsNotNull().Select(ctx)
	require.NoError(t, err)
	require.Len(t, nicknamed, 1)
	assert.Equal("Chang", nicknamed[0].Name)

	require.NoError(t, db.DropTable(ctx, testdata.TestObject{}))

	_, err = aliasql.From(db, obj).Select(ctx)
	var queryErr *aliasql.QueryError
	assert.True(errors.As(err, &queryErr), "selecting from a dropped table fails with the statement attached")
}

func TestInsertAll(t *testing.T) {
	ctx := context.Background()
	testObjectHelper, err := aliasql.NewExpectationHelper(testdata.TestObject{})
	require.NoError(t, err)

	testCases := []struct {
		desc       string
		models     func() interface{}
		expect     func(mock sqlmock.Sqlmock, models interface{})
		wantErr    error
		wantErrLen int
		wantCode   errors.Code
	}{
		{
			"should insert every model in one statement",
			func() interface{} { return loadTestObjects(t, "Simple", "Simple2") },
			func(mock sqlmock.Sqlmock, models interface{}) {
				aliasql.ExpectInsert(mock, testObjectHelper, models)
			},
			nil,
			0,
			"",
		},
		{
			"should accept pointers to models",
			func() interface{} {
				fixtures := loadTestObjects(t, "Simple")
				return []*testdata.TestObject{&fixtures[0]}
			},
			func(mock sqlmock.Sqlmock, models interface{}) {
				aliasql.ExpectInsert(mock, testObjectHelper, models)
			},
			nil,
			0,
			"",
		},
		{
			"should do nothing for an empty slice",
			func() interface{} { return []testdata.TestObject{} },
			func(mock sqlmock.Sqlmock, models interface{}) {},
			nil,
			0,
			"",
		},
		{
			"should report every invalid model and write nothing",
			func() interface{} {
				return []testdata.TestObject{{ID: 1}, {ID: 2, Name: "Chang"}, {ID: 3}}
			},
			func(mock sqlmock.Sqlmock, models interface{}) {},
			nil,
			2,
			"",
		},
		{
			"should report nil models",
			func() interface{} {
				fixtures := loadTestObjects(t, "Simple")
				return []*testdata.TestObject{nil, &fixtures[0]}
			},
			func(mock sqlmock.Sqlmock, models interface{}) {},
			nil,
			1,
			"",
		},
		{
			"should reject a model that is not a slice",
			func() interface{} { return testdata.TestObject{Name: "Chai"} },
			func(mock sqlmock.Sqlmock, models interface{}) {},
			nil,
			0,
			errors.ErrInvalidModel,
		},
		{
			"should roll back when the insert fails",
			func() interface{} { return loadTestObjects(t, "Simple") },
			func(mock sqlmock.Sqlmock, models interface{}) {
				mock.ExpectBegin()
				mock.ExpectExec("^INSERT INTO testobject").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			assert.AnError,
			0,
			"",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			db, mock, _ := newMockDb(t)
			models := tc.models()
			tc.expect(mock, models)

			err := db.InsertAll(ctx, models)

			switch {
			case tc.wantErr != nil:
				require.Error(t, err)
				assert.Equal(t, tc.wantErr, errors.Cause(err))
			case tc.wantErrLen > 0:
				var merr *multierror.Error
				require.True(t, errors.As(err, &merr))
				assert.Len(t, merr.Errors, tc.wantErrLen)
			case tc.wantCode != "":
				assert.True(t, errors.Is(err, tc.wantCode))
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInsertAllRollbackFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := aliasql.OpenDB(sqlDB, aliasql.Postgres, aliasql.WithLogger(zap.New(core)))
	rollbackErr := errors.Errorf("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec("^INSERT INTO testobject").WillReturnError(assert.AnError)
	mock.ExpectRollback().WillReturnError(rollbackErr)

	err = db.InsertAll(context.Background(), loadTestObjects(t, "Simple"))
	require.Error(t, err)
	assert.Equal(t, assert.AnError, errors.Cause(err))
	assert.NoError(t, mock.ExpectationsWereMet())

	entries := logs.FilterMessage("rollback failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["sql"], "INSERT INTO testobject")
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}

func TestInsertAllNilModel(t *testing.T) {
	db, mock, _ := newMockDb(t)

	err := db.InsertAll(context.Background(), []*testdata.TestObject{nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model 0: nil")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAndDropTable(t *testing.T) {
	ctx := context.Background()

	core, logs := observer.New(zapcore.DebugLevel)
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := aliasql.OpenDB(sqlDB, aliasql.Postgres, aliasql.WithLogger(zap.New(core)))

	mock.ExpectExec(testdata.FmtSQLRegex(`
		CREATE TABLE IF NOT EXISTS simple_object (key VARCHAR NOT NULL, value BIGINT NOT NULL, PRIMARY KEY (key))
	`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DROP TABLE IF EXISTS simple_object$`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.CreateTable(ctx, &testdata.SimpleObject{}))
	require.NoError(t, db.DropTable(ctx, testdata.SimpleObject{}))
	assert.NoError(t, mock.ExpectationsWereMet())

	entries := logs.FilterMessage("executed statement").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS simple_object", entries[1].ContextMap()["sql"])

	assert.True(t, errors.Is(db.CreateTable(ctx, "products"), errors.ErrInvalidModel))
	assert.True(t, errors.Is(db.DropTable(ctx, nil), errors.ErrInvalidModel))
}

func TestOpenDBLeavesConnectionOpen(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := aliasql.OpenDB(sqlDB, aliasql.SQLite)
	assert.Same(t, sqlDB, db.DB())
	assert.Equal(t, aliasql.SQLite, db.Dialect())
	assert.Same(t, alias.DefaultBinder, db.Binder())

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet(), "Close must not close a connection it was handed")
}

func TestOpenErrors(t *testing.T) {
	_, err := aliasql.Open(aliasql.ConnectionProps{Driver: "oracle"})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedDialect))

	_, err = aliasql.Open(aliasql.ConnectionProps{
		Driver:     "sqlite",
		ConnString: aliasql.SQLiteDSN(filepath.Join(t.TempDir(), "missing", "dir", "x.db")),
	})
	assert.Error(t, err)
}

func TestQueryErrorMessage(t *testing.T) {
	err := aliasql.NewQueryError(assert.AnError, "SELECT 1")
	assert.Equal(t, assert.AnError.Error()+": Query: SELECT 1", err.Error())
	assert.Equal(t, assert.AnError, errors.Cause(err))
}
