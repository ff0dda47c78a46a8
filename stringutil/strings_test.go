package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTableAlias(t *testing.T) {
	counter := 0
	assert.Equal(t, "t0", GenerateTableAlias(&counter))
	assert.Equal(t, "t1", GenerateTableAlias(&counter))
	assert.Equal(t, 2, counter)
}

func TestToSnakeCase(t *testing.T) {
	testCases := []struct {
		give string
		want string
	}{
		{"Product", "product"},
		{"UnitsInStock", "units_in_stock"},
		{"ProductID", "product_id"},
		{"IDName", "id_name"},
		{"already_snake", "already_snake"},
	}
	for _, tc := range testCases {
		t.Run(tc.give, func(t *testing.T) {
			assert.Equal(t, tc.want, ToSnakeCase(tc.give))
		})
	}
}
