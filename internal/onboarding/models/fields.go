package models

import (
	"reflect"
	"strings"
	"sync"
)

var sectionTypes = map[Section]reflect.Type{
	SectionContact:  reflect.TypeFor[Contact](),
	SectionPersonal: reflect.TypeFor[PersonalDetails](),
	SectionEntity:   reflect.TypeFor[EntityDetails](),
	SectionLender:   reflect.TypeFor[LenderDetails](),
	SectionCriteria: reflect.TypeFor[LendingCriteria](),
	SectionBank:     reflect.TypeFor[BankDetails](),
	SectionConsent:  reflect.TypeFor[Consent](),
}

// fieldIndexes caches json name -> struct field index per section type.
var fieldIndexes sync.Map

func indexFor(t reflect.Type) map[string]int {
	if cached, ok := fieldIndexes.Load(t); ok {
		return cached.(map[string]int)
	}
	idx := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		idx[name] = i
	}
	actual, _ := fieldIndexes.LoadOrStore(t, idx)
	return actual.(map[string]int)
}

// Lookup returns the value of the field whose json name is name. section must
// be a section struct or a pointer to one.
func Lookup(section any, name string) (any, bool) {
	val := reflect.ValueOf(section)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, false
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, false
	}
	i, ok := indexFor(val.Type())[name]
	if !ok {
		return nil, false
	}
	return val.Field(i).Interface(), true
}

// HasField reports whether the section declares a stage-local field name.
func HasField(s Section, name string) bool {
	t, ok := sectionTypes[s]
	if !ok {
		return false
	}
	_, ok = indexFor(t)[name]
	return ok
}

// FieldKind reports the Go kind of a section field, used to pick validation
// rules (string, bool or []string).
func FieldKind(s Section, name string) reflect.Kind {
	t, ok := sectionTypes[s]
	if !ok {
		return reflect.Invalid
	}
	i, ok := indexFor(t)[name]
	if !ok {
		return reflect.Invalid
	}
	return t.Field(i).Type.Kind()
}

// IsKnownSection reports whether s names a draft section.
func IsKnownSection(s Section) bool {
	_, ok := sectionTypes[s]
	return ok
}
