// Package form holds the input dialogs of the user list: declared fields,
// entered values and validation through validator rule tags.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field 字段声明；Rules 为 validator 规则串，如 "required,max=64"
type Field struct {
	Name  string
	Label string
	Rules string
}

// Values 字段名 -> 输入值
type Values map[string]string

type FieldError struct {
	Field string
	Label string
	Tag   string
	Param string
}

func (e FieldError) String() string {
	switch e.Tag {
	case "required":
		return e.Label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Label, e.Param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Label, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Label, e.Param)
	case "alphanum":
		return e.Label + " may only contain letters and digits"
	default:
		return fmt.Sprintf("%s is invalid (%s)", e.Label, e.Tag)
	}
}

// ValidationError 校验失败的字段列表，顺序同声明
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return strings.Join(msgs, "; ")
}

// Has 某字段是否校验失败
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

type Dialog struct {
	fields []Field
	values Values
	v      *validator.Validate
}

func New(fields ...Field) *Dialog {
	return &Dialog{fields: fields, values: Values{}, v: validator.New()}
}

func (d *Dialog) Fields() []Field { return d.fields }

func (d *Dialog) Set(name, value string) { d.values[name] = value }

func (d *Dialog) Value(name string) string { return d.values[name] }

// Values 返回去掉首尾空白的副本
func (d *Dialog) Values() Values {
	out := make(Values, len(d.fields))
	for _, f := range d.fields {
		out[f.Name] = strings.TrimSpace(d.values[f.Name])
	}
	return out
}

// Fill 用 vals 覆盖已声明字段，未声明的忽略
func (d *Dialog) Fill(vals Values) {
	for _, f := range d.fields {
		if v, ok := vals[f.Name]; ok {
			d.values[f.Name] = v
		}
	}
}

func (d *Dialog) Reset() { d.values = Values{} }

func (d *Dialog) Validate() error {
	vals := d.Values()
	var fe []FieldError
	for _, f := range d.fields {
		if f.Rules == "" {
			continue
		}
		err := d.v.Var(vals[f.Name], f.Rules)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		for _, ve := range verrs {
			fe = append(fe, FieldError{Field: f.Name, Label: f.Label, Tag: ve.Tag(), Param: ve.Param()})
		}
	}
	if len(fe) > 0 {
		return &ValidationError{Fields: fe}
	}
	return nil
}

// ValidateFields 回调风格；err 非空时调用方应直接放弃
func (d *Dialog) ValidateFields(cb func(err error, values Values)) {
	cb(d.Validate(), d.Values())
}
