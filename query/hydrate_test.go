package query

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/skuid/aliasql/tags"
	"github.com/skuid/aliasql/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testObjectColumns = []string{
	"t0.id",
	"t0.name",
	"t0.type",
	"t0.is_active",
	"t0.rating",
	"t0.nickname",
	"t0.config",
	"t0.created_at",
}

func TestHydrate(t *testing.T) {
	created := time.Date(2020, 3, 4, 5, 6, 7, 0, time.UTC)

	testCases := []struct {
		desc     string
		rows     *sqlmock.Rows
		expected []interface{}
	}{
		{
			"should hydrate a single row",
			sqlmock.NewRows(testObjectColumns).
				AddRow(1, "Chai", "tea", true, 18.0, "chai", `{"config_a": "a", "config_b": "b"}`, created),
			[]interface{}{
				testdata.TestObject{
					ID:          1,
					Name:        "Chai",
					Type:        "tea",
					IsActive:    true,
					Rating:      18,
					Nickname:    testdata.StrPtr("chai"),
					Config:      testdata.Config{ConfigA: "a", ConfigB: "b"},
					CreatedDate: created,
				},
			},
		},
		{
			"should hydrate every row, not just the last one",
			sqlmock.NewRows(testObjectColumns).
				AddRow(1, "Chai", "tea", true, 18.0, nil, nil, created).
				AddRow(2, "Chang", "tea", false, 19.0, nil, nil, created),
			[]interface{}{
				testdata.TestObject{ID: 1, Name: "Chai", Type: "tea", IsActive: true, Rating: 18, CreatedDate: created},
				testdata.TestObject{ID: 2, Name: "Chang", Type: "tea", Rating: 19, CreatedDate: created},
			},
		},
		{
			"should convert values the way sqlite and postgres return them",
			sqlmock.NewRows(testObjectColumns).
				AddRow(int64(5), []byte("Gumbo Mix"), nil, int64(1), []byte("21.35"), []byte("gumbo"), []byte(`{"config_a": "z"}`), "2020-03-04T05:06:07Z"),
			[]interface{}{
				testdata.TestObject{
					ID:          5,
					Name:        "Gumbo Mix",
					IsActive:    true,
					Rating:      21.35,
					Nickname:    testdata.StrPtr("gumbo"),
					Config:      testdata.Config{ConfigA: "z"},
					CreatedDate: created,
				},
			},
		},
		{
			"should return an empty result for no rows",
			sqlmock.NewRows(testObjectColumns),
			[]interface{}{},
		},
		{
			"should ignore columns that are not selected from the model",
			sqlmock.NewRows([]string{"t0.id", "t1.other"}).
				AddRow(3, "x"),
			[]interface{}{
				testdata.TestObject{ID: 3},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert := assert.New(t)

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			meta, err := tags.Register(testdata.TestObject{})
			require.NoError(t, err)
			tbl := Build(meta, nil)

			mock.ExpectQuery("^SELECT").WillReturnRows(tc.rows)

			rows, err := tbl.BuildSQL().RunWith(db).Query()
			require.NoError(t, err)
			defer rows.Close()

			results, err := Hydrate(meta, tbl.FieldAliases(), rows)
			require.NoError(t, err)
			assert.Equal(tc.expected, results)
			assert.NoError(mock.ExpectationsWereMet())
		})
	}
}

func TestHydrateConversionError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	meta, err := tags.Register(testdata.TestObject{})
	require.NoError(t, err)
	tbl := Build(meta, nil)

	mock.ExpectQuery("^SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"t0.id", "t0.name"}).AddRow("seven", "x"),
	)

	rows, err := tbl.BuildSQL().RunWith(db).Query()
	require.NoError(t, err)
	defer rows.Close()

	_, err = Hydrate(meta, tbl.FieldAliases(), rows)
	assert.EqualError(t, err, `hydrating column 'id' of table 'testobject': strconv.ParseInt: parsing "seven": invalid syntax`)
}
