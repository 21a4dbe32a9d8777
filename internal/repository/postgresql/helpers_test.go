package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	var w whereBuilder
	w.scope(false, []string{"c1"}, "u.company_id")
	w.add("u.role = ?", "employee")
	w.search("50%_x", "u.full_name", "u.email")
	limit := w.page(2, 10)

	assert.Equal(t,
		" WHERE u.company_id = ANY($1::uuid[]) AND u.role = $2 AND (u.full_name ILIKE $3 OR u.email ILIKE $4)",
		w.sql())
	assert.Equal(t, " LIMIT $5 OFFSET $6", limit)
	assert.Equal(t, []any{[]string{"c1"}, "employee", `%50\%\_x%`, `%50\%\_x%`, 10, 10}, w.args)
}

func TestWhereBuilder_AllCompaniesAndEmpty(t *testing.T) {
	var w whereBuilder
	w.scope(true, nil, "c.id")
	w.search("  ", "c.name")
	assert.Empty(t, w.sql())
	assert.Empty(t, w.page(1, 0))
	assert.Empty(t, w.args)
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, Schema, "CONSTRAINT uq_attendances_employee_date UNIQUE (employee_id, date)")
	assert.NotContains(t, Schema, "is_completed")
}

func TestNewID_IsV7(t *testing.T) {
	id, err := newID()
	assert.NoError(t, err)
	assert.Equal(t, byte('7'), id[14])
}
