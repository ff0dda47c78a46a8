package query

import (
	"testing"

	sql "github.com/Masterminds/squirrel"
	qp "github.com/skuid/aliasql/queryparts"
	"github.com/skuid/aliasql/tags"
	"github.com/skuid/aliasql/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilder(t *testing.T) {
	testCases := []struct {
		desc        string
		model       interface{}
		placeholder sql.PlaceholderFormat
		wheres      func(tbl *qp.Table, meta *tags.TableMetadata) []qp.Where
		expected    string
		expectedLen int
	}{
		{
			"should select every mapped column of the model",
			testdata.TestObject{},
			nil,
			nil,
			testdata.FmtSQL(`
				SELECT
					t0.id AS "t0.id",
					t0.name AS "t0.name",
					t0.type AS "t0.type",
					t0.is_active AS "t0.is_active",
					t0.rating AS "t0.rating",
					t0.nickname AS "t0.nickname",
					t0.config AS "t0.config",
					t0.created_at AS "t0.created_at"
				FROM testobject AS t0
			`),
			0,
		},
		{
			"should add wheres built from field tokens",
			&testdata.SimpleObject{},
			sql.Question,
			func(tbl *qp.Table, meta *tags.TableMetadata) []qp.Where {
				key, _ := meta.GetField("Key")
				value, _ := meta.GetField("Value")
				return []qp.Where{
					{Field: qp.FieldDescriptor{Alias: tbl.Alias, Table: tbl.Name, Column: key.GetColumnName()}, Op: qp.OpEq, Val: "a"},
					{Field: qp.FieldDescriptor{Alias: tbl.Alias, Table: tbl.Name, Column: value.GetColumnName()}, Op: qp.OpGt, Val: 2},
				}
			},
			testdata.FmtSQL(`
				SELECT
					t0.key AS "t0.key",
					t0.value AS "t0.value"
				FROM simple_object AS t0
				WHERE t0.key = ? AND t0.value > ?
			`),
			2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert := assert.New(t)

			meta, err := tags.Register(tc.model)
			require.NoError(t, err)

			tbl := Build(meta, tc.placeholder)
			if tc.wheres != nil {
				for _, where := range tc.wheres(tbl, meta) {
					require.NoError(t, tbl.AddWhere(where))
				}
			}

			actual, args, err := tbl.ToSQL()
			require.NoError(t, err)
			assert.Equal(tc.expected, actual)
			assert.Len(args, tc.expectedLen)
		})
	}
}
