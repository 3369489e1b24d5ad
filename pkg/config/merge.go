package config

import (
	"fmt"
	"reflect"
)

// MergeConfig 把 src 中的非零字段叠加到 dst 上，dst 一般来自 DefaultConfig()。
// 零值（false、0、""、空切片）视为未配置，保留默认值；
// 结构体和 map 逐项合并，切片整体替换。
func MergeConfig[T any](dst, src *T) (*T, error) {
	switch {
	case dst == nil && src == nil:
		return nil, ErrNilConfig
	case dst == nil:
		return src, nil
	case src == nil:
		return dst, nil
	}

	if err := overlay(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem(), ""); err != nil {
		return nil, err
	}
	return dst, nil
}

// overlay 递归叠加，path 只用于错误信息
func overlay(dst, src reflect.Value, path string) error {
	if !src.IsValid() || src.IsZero() || isEmptyCollection(src) {
		return nil
	}
	if dst.Kind() != src.Kind() {
		return fmt.Errorf("config field %q: kind mismatch %s vs %s", path, dst.Kind(), src.Kind())
	}

	switch dst.Kind() {
	case reflect.Struct:
		t := src.Type()
		for i := range src.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			target := dst.FieldByName(f.Name)
			if !target.CanSet() {
				continue
			}
			if err := overlay(target, src.Field(i), join(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(dst.Type(), src.Len()))
		}
		iter := src.MapRange()
		for iter.Next() {
			k := iter.Key()
			cur := dst.MapIndex(k)
			if !cur.IsValid() {
				dst.SetMapIndex(k, iter.Value())
				continue
			}
			merged := reflect.New(dst.Type().Elem()).Elem()
			merged.Set(cur)
			if err := overlay(merged, iter.Value(), join(path, fmt.Sprint(k.Interface()))); err != nil {
				return err
			}
			dst.SetMapIndex(k, merged)
		}
		return nil

	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return overlay(dst.Elem(), src.Elem(), path)

	default:
		// 标量与切片直接替换
		if dst.CanSet() {
			dst.Set(src)
		}
		return nil
	}
}

func isEmptyCollection(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return false
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
