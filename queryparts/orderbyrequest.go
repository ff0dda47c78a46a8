package queryparts

/*
OrderByRequest holds information about a request to order by a field
*/
type OrderByRequest struct {
	Field      FieldDescriptor
	Descending bool
}

func (o OrderByRequest) String() string {
	if o.Descending {
		return o.Field.String() + " DESC"
	}
	return o.Field.String()
}
