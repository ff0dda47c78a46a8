/* Package reflectutil contains basic go reflection utility funcs
 */
package reflectutil

import (
	"reflect"
)

// StructPointer returns the struct value behind a non-nil pointer to a struct
func StructPointer(v interface{}) (reflect.Value, bool) {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() || ptr.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return ptr.Elem(), true
}

// StructType unwraps pointers and slices down to a struct type
func StructType(t reflect.Type) (reflect.Type, bool) {
	for t != nil && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	return t, true
}

/*
FieldOffset works out where fieldPtr points inside the struct addressed by base.
It returns the byte offset from the start of the struct and the type being
pointed at. ok is false if fieldPtr is not a non-nil pointer, or if it points
outside of the struct.
*/
func FieldOffset(base reflect.Value, fieldPtr interface{}) (offset uintptr, typ reflect.Type, ok bool) {
	ptr := reflect.ValueOf(fieldPtr)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() || !base.CanAddr() {
		return 0, nil, false
	}

	start := base.UnsafeAddr()
	addr := ptr.Pointer()
	if addr < start || addr >= start+base.Type().Size() {
		return 0, nil, false
	}

	return addr - start, ptr.Type().Elem(), true
}
