package bridge

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

// fieldIndex matches the exact Go field name first, then a loose form that
// ignores case and underscores ("max_speed" finds MaxSpeed).
func fieldIndex(t reflect.Type, name string) (int, error) {
	if t.Kind() != reflect.Struct {
		return 0, fmt.Errorf("%s has no fields: %w", t, ErrNoSuchField)
	}
	if f, ok := t.FieldByName(name); ok && f.IsExported() && len(f.Index) == 1 {
		return f.Index[0], nil
	}
	want := looseName(name)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && looseName(f.Name) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s.%s: %w", t.Name(), name, ErrNoSuchField)
}

func looseName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// copyOut detaches a value from world storage so callers never alias it.
func copyOut(v reflect.Value) any {
	return deepCopy(v).Interface()
}

// deepCopy duplicates v, descending into slices, maps, arrays, interfaces and
// exported struct fields. Pointers and unexported fields are shared.
func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			c.Index(i).Set(deepCopy(v.Index(i)))
		}
		return c
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		c := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			c.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return c
	case reflect.Array:
		c := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			c.Index(i).Set(deepCopy(v.Index(i)))
		}
		return c
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		c := reflect.New(v.Type()).Elem()
		c.Set(deepCopy(v.Elem()))
		return c
	case reflect.Struct:
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				c.Field(i).Set(deepCopy(v.Field(i)))
			}
		}
		return c
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// assign stores src into dst. Caller holds the write gate; w lets a
// DynamicValue source be resolved without reacquiring it.
func assign(w *ecs.World, dst reflect.Value, src any) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dv, ok := src.(DynamicValue); ok {
		rv, err := dv.current(w)
		if err != nil {
			return err
		}
		src = copyOut(rv)
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch {
	case isNumber(dst.Kind()) && isNumber(sv.Kind()):
		return assignNumber(dst, sv)
	case dst.Kind() == reflect.String && sv.Kind() == reflect.String:
		dst.SetString(sv.String())
		return nil
	case dst.Kind() == reflect.Bool && sv.Kind() == reflect.Bool:
		dst.SetBool(sv.Bool())
		return nil
	case dst.Kind() == reflect.Struct && sv.Kind() == reflect.Map:
		return assignStruct(w, dst, sv)
	case dst.Kind() == reflect.Slice && sv.Kind() == reflect.Slice:
		out := reflect.MakeSlice(dst.Type(), sv.Len(), sv.Len())
		for i := 0; i < sv.Len(); i++ {
			if err := assign(w, out.Index(i), sv.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	}
	return fmt.Errorf("cannot store %s in %s: %w", sv.Type(), dst.Type(), ErrFieldType)
}

func assignStruct(w *ecs.World, dst reflect.Value, src reflect.Value) error {
	if src.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("struct fields need string keys, got %s: %w", src.Type().Key(), ErrFieldType)
	}
	iter := src.MapRange()
	for iter.Next() {
		name := iter.Key().String()
		idx, err := fieldIndex(dst.Type(), name)
		if err != nil {
			return err
		}
		if err := assign(w, dst.Field(idx), iter.Value().Interface()); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// assignNumber converts between numeric kinds. Integer destinations reject
// fractional and out-of-range values instead of truncating them.
func assignNumber(dst, src reflect.Value) error {
	bad := fmt.Errorf("cannot store %v in %s: %w", src, dst.Type(), ErrFieldType)
	switch {
	case dst.CanInt():
		var i int64
		switch {
		case src.CanInt():
			i = src.Int()
		case src.CanUint():
			if src.Uint() > math.MaxInt64 {
				return bad
			}
			i = int64(src.Uint())
		default:
			f := src.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return bad
			}
			i = int64(f)
		}
		if dst.OverflowInt(i) {
			return bad
		}
		dst.SetInt(i)
	case dst.CanUint():
		var u uint64
		switch {
		case src.CanInt():
			if src.Int() < 0 {
				return bad
			}
			u = uint64(src.Int())
		case src.CanUint():
			u = src.Uint()
		default:
			f := src.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return bad
			}
			u = uint64(f)
		}
		if dst.OverflowUint(u) {
			return bad
		}
		dst.SetUint(u)
	default:
		dst.Set(src.Convert(dst.Type()))
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
