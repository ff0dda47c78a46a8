package queryparts

import "fmt"

/*
FieldDescriptor holds the table/field info for an aliased field. Once a field
reference has been resolved, predicates and order by terms only hold the
descriptor, so they no longer depend on the model instance.
*/
type FieldDescriptor struct {
	Alias  string
	Table  string
	Column string
}

const (
	AliasedField string = "%[1]v.%[2]v"
)

// String returns the aliased column, like t0.category
func (fd FieldDescriptor) String() string {
	return fmt.Sprintf(AliasedField, fd.Alias, fd.Column)
}
