package aliasql

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/hashicorp/go-multierror"
	"github.com/skuid/aliasql/alias"
	"github.com/skuid/aliasql/decoding"
	"github.com/skuid/aliasql/errors"
	"github.com/skuid/aliasql/query"
	qp "github.com/skuid/aliasql/queryparts"
	"github.com/skuid/aliasql/tags"
	"go.uber.org/zap"
	validator "gopkg.in/go-playground/validator.v9"
)

// ORM interface describes the storage operations client code seeds and
// manages tables with. Queries themselves are built with From.
type ORM interface {
	CreateTable(ctx context.Context, model interface{}) error
	DropTable(ctx context.Context, model interface{}) error
	InsertAll(ctx context.Context, models interface{}) error
	Close() error
}

// Db is a session against one database. It is safe for concurrent use; the
// model instances queries are built from are not.
type Db struct {
	db       *sql.DB
	dialect  Dialect
	logger   *zap.Logger
	binder   *alias.Binder
	validate *validator.Validate
	owned    bool
}

// Option configures a Db
type Option func(*Db)

// WithLogger sets the logger statements are logged to. Defaults to zap.L().
func WithLogger(logger *zap.Logger) Option {
	return func(d *Db) {
		d.logger = logger
	}
}

// WithBinder sets the binder model instances are bound with. Defaults to
// alias.DefaultBinder.
func WithBinder(binder *alias.Binder) Option {
	return func(d *Db) {
		d.binder = binder
	}
}

// Open connects to the database described by props. The returned Db owns the
// connection and closes it on Close.
func Open(props ConnectionProps, opts ...Option) (*Db, error) {
	sqlDB, dialect, err := NewConnection(props)
	if err != nil {
		return nil, err
	}
	d := OpenDB(sqlDB, dialect, opts...)
	d.owned = true
	return d, nil
}

// OpenDB wraps an existing connection. Close leaves the connection open.
func OpenDB(sqlDB *sql.DB, dialect Dialect, opts ...Option) *Db {
	d := &Db{
		db:       sqlDB,
		dialect:  dialect,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.L()
	}
	if d.binder == nil {
		d.binder = alias.DefaultBinder
	}
	return d
}

// Close closes the connection if the Db opened it
func (d *Db) Close() error {
	if d.owned {
		return d.db.Close()
	}
	return nil
}

// DB returns the underlying connection
func (d *Db) DB() *sql.DB {
	return d.db
}

// Dialect returns the dialect of the connection
func (d *Db) Dialect() Dialect {
	return d.dialect
}

// Binder returns the binder queries against this Db bind instances with
func (d *Db) Binder() *alias.Binder {
	return d.binder
}

/*
CreateTable creates the table for model if it does not exist yet. Columns are
declared in field order, with the type from the field's type tag or the type
inferred from the Go field.
*/
func (d *Db) CreateTable(ctx context.Context, model interface{}) error {
	meta, err := tags.Register(model)
	if err != nil {
		return err
	}

	return d.exec(ctx, createTableSQL(d.dialect, meta))
}

// DropTable drops the table for model if it exists
func (d *Db) DropTable(ctx context.Context, model interface{}) error {
	meta, err := tags.Register(model)
	if err != nil {
		return err
	}

	return d.exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", meta.GetTableName()))
}

func createTableSQL(dialect Dialect, meta *tags.TableMetadata) string {
	definitions := make([]string, 0, len(meta.GetFields())+1)
	for _, field := range meta.GetFields() {
		definition := fmt.Sprintf("%s %s", field.GetColumnName(), dialect.ColumnType(field))
		if !field.IsNullable() {
			definition += " NOT NULL"
		}
		definitions = append(definitions, definition)
	}

	if pks := meta.GetPrimaryKeyColumnNames(); len(pks) > 0 {
		definitions = append(definitions, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", meta.GetTableName(), strings.Join(definitions, ", "))
}

/*
InsertAll validates and inserts a slice of models, given as structs or
pointers to structs, in a single statement inside one transaction. Every
invalid model is reported, and nothing is written if any of them is invalid.
*/
func (d *Db) InsertAll(ctx context.Context, models interface{}) error {
	modelsValue := reflect.Indirect(reflect.ValueOf(models))
	if modelsValue.Kind() != reflect.Slice {
		return errors.Newf(errors.ErrInvalidModel, "InsertAll expects a slice of models, got %T", models)
	}

	meta, err := tags.Register(models)
	if err != nil {
		return err
	}

	if modelsValue.Len() == 0 {
		return nil
	}

	var validationErrs *multierror.Error
	for i := 0; i < modelsValue.Len(); i++ {
		model := reflect.Indirect(modelsValue.Index(i))
		if !model.IsValid() {
			validationErrs = multierror.Append(validationErrs, errors.Errorf("model %d: nil", i))
			continue
		}
		if err := d.validate.Struct(model.Interface()); err != nil {
			validationErrs = multierror.Append(validationErrs, errors.Wrapf(err, "model %d", i))
		}
	}
	if err := validationErrs.ErrorOrNil(); err != nil {
		return err
	}

	insertQuery := squirrel.Insert(meta.GetTableName()).
		PlaceholderFormat(d.dialect.Placeholder).
		Columns(meta.GetColumnNames()...)

	for i := 0; i < modelsValue.Len(); i++ {
		values, err := columnValues(meta, reflect.Indirect(modelsValue.Index(i)))
		if err != nil {
			return err
		}
		insertQuery = insertQuery.Values(values...)
	}

	statement, args, err := insertQuery.ToSql()
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	if _, err := tx.ExecContext(ctx, statement, args...); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Debug("rollback failed", zap.String("sql", statement), zap.Error(rbErr))
		}
		return NewQueryError(err, statement)
	}
	d.logStatement(statement, args, start)

	return tx.Commit()
}

func columnValues(meta *tags.TableMetadata, model reflect.Value) ([]interface{}, error) {
	values := make([]interface{}, 0, len(meta.GetFields()))
	for _, field := range meta.GetFields() {
		value := model.FieldByIndex(field.GetIndex())

		if field.IsJSONB() {
			encoded, err := decoding.GetDecoder(nil).MarshalToString(value.Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "encoding jsonb column '%s'", field.GetColumnName())
			}
			values = append(values, encoded)
			continue
		}

		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				values = append(values, nil)
				continue
			}
			value = value.Elem()
		}
		values = append(values, value.Interface())
	}
	return values, nil
}

/*
Execute runs the select built in tbl and hydrates every row into a fresh value
of the model described by meta.
*/
func (d *Db) Execute(ctx context.Context, tbl *qp.Table, meta *tags.TableMetadata) ([]interface{}, error) {
	statement, args, err := tbl.ToSQL()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := d.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, NewQueryError(err, statement)
	}
	defer rows.Close()

	results, err := query.Hydrate(meta, tbl.FieldAliases(), rows)
	if err != nil {
		return nil, NewQueryError(err, statement)
	}
	d.logStatement(statement, args, start, zap.Int("rows", len(results)))

	return results, nil
}

// Count runs a count of the rows the select built in tbl would return
func (d *Db) Count(ctx context.Context, tbl *qp.Table) (int64, error) {
	statement, args, err := tbl.CountSQL().ToSql()
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var count int64
	if err := d.db.QueryRowContext(ctx, statement, args...).Scan(&count); err != nil {
		return 0, NewQueryError(err, statement)
	}
	d.logStatement(statement, args, start, zap.Int64("count", count))

	return count, nil
}

func (d *Db) exec(ctx context.Context, statement string) error {
	start := time.Now()
	if _, err := d.db.ExecContext(ctx, statement); err != nil {
		return NewQueryError(err, statement)
	}
	d.logStatement(statement, nil, start)
	return nil
}

func (d *Db) logStatement(statement string, args []interface{}, start time.Time, fields ...zap.Field) {
	d.logger.Debug(
		"executed statement",
		append([]zap.Field{
			zap.String("sql", statement),
			zap.Int("args", len(args)),
			zap.Duration("duration", time.Since(start)),
		}, fields...)...,
	)
}
