package form

import "strings"

const (
	FieldID       = "id"
	FieldName     = "name"
	FieldRole     = "role"
	FieldPassword = "password"
)

func roleRule(roles []string) string {
	if len(roles) == 0 {
		return "required,max=32"
	}
	return "required,oneof=" + strings.Join(roles, " ")
}

// EditForm id 只读展示；password 留空表示不修改
func EditForm(roles []string) *Dialog {
	return New(
		Field{Name: FieldID, Label: "ID", Rules: "required"},
		Field{Name: FieldName, Label: "Name", Rules: "required,max=64"},
		Field{Name: FieldRole, Label: "Role", Rules: roleRule(roles)},
		Field{Name: FieldPassword, Label: "Password", Rules: "omitempty,min=3,max=72"},
	)
}

func AddForm(roles []string) *Dialog {
	return New(
		Field{Name: FieldID, Label: "ID", Rules: "required,alphanum,max=32"},
		Field{Name: FieldName, Label: "Name", Rules: "required,max=64"},
		Field{Name: FieldRole, Label: "Role", Rules: roleRule(roles)},
		Field{Name: FieldPassword, Label: "Password", Rules: "required,min=3,max=72"},
	)
}
