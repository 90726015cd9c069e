package validation

import (
	"net/url"
	"reflect"
	"strings"
)

// Bind copies submitted values into the string fields of the struct pointed
// to by dst, matching each field's `form` tag.
func Bind(values url.Values, dst interface{}) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		if _, ok := values[name]; ok {
			v.Field(i).SetString(strings.TrimSpace(values.Get(name)))
		}
	}
}
