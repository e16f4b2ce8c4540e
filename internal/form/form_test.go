package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roles = []string{"developer", "admin", "editor", "guest"}

func TestEditFormValidation(t *testing.T) {
	tests := []struct {
		name   string
		values Values
		failed []string
	}{
		{"ok", Values{"id": "alice", "name": "Alice", "role": "editor"}, nil},
		{"ok with password", Values{"id": "alice", "name": "Alice", "role": "editor", "password": "abc"}, nil},
		{"blank name", Values{"id": "alice", "name": "   ", "role": "editor"}, []string{"name"}},
		{"unknown role", Values{"id": "alice", "name": "Alice", "role": "wizard"}, []string{"role"}},
		{"short password", Values{"id": "alice", "name": "Alice", "role": "guest", "password": "ab"}, []string{"password"}},
		{"empty", Values{}, []string{"id", "name", "role"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := EditForm(roles)
			d.Fill(tc.values)

			var gotErr error
			var gotVals Values
			d.ValidateFields(func(err error, v Values) { gotErr, gotVals = err, v })

			if tc.failed == nil {
				require.NoError(t, gotErr)
				assert.Equal(t, tc.values["name"], gotVals["name"])
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, gotErr, &ve)
			var names []string
			for _, f := range ve.Fields {
				names = append(names, f.Field)
			}
			assert.Equal(t, tc.failed, names)
		})
	}
}

func TestAddFormRequiresPasswordAndAlphanumID(t *testing.T) {
	d := AddForm(roles)
	d.Fill(Values{"id": "bob smith", "name": "Bob", "role": "guest"})

	err := d.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has(FieldID))
	assert.True(t, ve.Has(FieldPassword))
	assert.Contains(t, err.Error(), "ID may only contain letters and digits")
	assert.Contains(t, err.Error(), "Password is required")
}

func TestRoleRuleWithoutCatalogue(t *testing.T) {
	d := AddForm(nil)
	d.Fill(Values{"id": "bob", "name": "Bob", "role": "anything", "password": "secret"})
	assert.NoError(t, d.Validate())
}

func TestValuesTrimAndReset(t *testing.T) {
	d := EditForm(roles)
	d.Set(FieldName, "  Alice  ")
	d.Set("unknown", "x")

	v := d.Values()
	assert.Equal(t, "Alice", v[FieldName])
	_, ok := v["unknown"]
	assert.False(t, ok)
	assert.Equal(t, "  Alice  ", d.Value(FieldName))

	d.Reset()
	assert.Empty(t, d.Value(FieldName))
}
