/*
Aliasql builds SQL queries over go structs, referencing columns through the
fields of a model instance instead of through column name strings.

Usage:

* Query models with typed field references
* Create, drop and seed tables from struct tags
* PostgreSQL and embedded SQLite storage
* Tracing through DataDog when a service name is configured

Initialization:

Open a session against your database.

	db, err := aliasql.Open(aliasql.ConnectionProps{
		Driver:     "postgres",
		ConnString: "postgres://localhost:5432/sampledb?user=user&password=password",
	})

Or wrap a connection you already have.

	db := aliasql.OpenDB(sqlDB, aliasql.SQLite)

Connection settings can also be read from ALIASQL_* environment variables.

	db, err := aliasql.Open(aliasql.LoadConnectionProps(aliasql.NewViper()))

You can close the connection with `db.Close()`.

Queries:

A query is created from a pointer to a model instance. The fields of that
instance then stand in for the columns of the table.

	p := &Product{}
	products, err := aliasql.From(db, p).
		Where(&p.Category).Is("Beverages").
		And(&p.UnitsInStock).Exceeds(0).
		Select(ctx)

	count, err := aliasql.From(db, p).Where(&p.ProductName).Like("Chef%").SelectCount(ctx)

Select returns new values, one per row. The instance used to build the query
only anchors the field references and is never written to.

Alias Binding:

Creating a query binds the instance to it. An instance is bound to one query at
a time: creating a second query from the same instance displaces the first,
and every field reference the first query resolves afterwards fails with an
error carrying the UNMAPPED_FIELD code.

	p := &Product{}
	q1 := aliasql.From(db, p)
	q2 := aliasql.From(db, p)

	n1, err1 := q1.Where(&p.Category).Is("Beverages").SelectCount(ctx) // 0, UNMAPPED_FIELD
	n2, err2 := q2.Where(&p.Category).Is("Beverages").SelectCount(ctx) // 2, nil

	if errors.Is(err1, errors.ErrUnmappedField) {
		// retry with an instance of its own
	}

Never share an instance between goroutines that build queries. Either allocate
a new instance per query, or confine one instance per goroutine with
alias.Local.

	products := alias.NewLocal[Product]()
	ctx = products.Attach(ctx)
	p := products.Get(ctx)

Model Mapping via Structs:

Struct fields are annotated with tags that tell aliasql which column they map
to and how it is declared.

	type tableA struct {
		Metadata metadata.Metadata `aliasql:"tablename=table_a"`
		ID       int               `aliasql:"primary_key,column=id"`
		FieldA   string            `aliasql:"column=field_a"`
		FieldB   *string           `aliasql:"column=field_b"`
		Price    float64           `aliasql:"column=price,type=DECIMAL(10,2)"`
		Config   Config            `aliasql:"jsonb,column=config"`
	}

Table Metadata:
	A field of the type `metadata.Metadata` carries table level settings.

	tablename:

		Specifies the name of the table in the database. Defaults to the snake cased name of the struct.

Column Tags:

	column:

		Specifies the column name that is associated with this field. Fields without a column are not mapped, and referencing them in a query is an UNMAPPED_FIELD error.

	primary_key:

		Indicates that this column is part of the primary key.

	nullable:

		The column accepts NULL. Pointer fields are always nullable.

	type:

		The SQL type used when creating the table. Inferred from the go type when absent.

	jsonb:

		The field is stored as JSON, and decoded with jsoniter when loaded.

Validation:

InsertAll validates every model with go-playground validator `validate` tags
before writing anything, and reports every invalid model at once.
*/
package aliasql
