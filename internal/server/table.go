package server

import (
	"reflect"
	"strings"
)

// Table - табличный ответ для фронтенда: имена колонок и строки
type Table struct {
	Columns []string `json:"columns"`
	Data    any      `json:"data"`
}

// NewTable takes the column names from the json tags of T in field order.
func NewTable[T any](rows []T) Table {
	if rows == nil {
		rows = []T{}
	}
	return Table{Columns: columnsOf(reflect.TypeFor[T]()), Data: rows}
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return []string{}
	}
	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		cols = append(cols, name)
	}
	return cols
}
