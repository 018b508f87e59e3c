package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationName(t *testing.T) {
	cases := map[string]string{
		"":                              "db.unknown",
		"  select * from jobs":          "db.select",
		"INSERT INTO jobs VALUES (1)":   "db.insert",
		"update notifications set read": "db.update",
		"DELETE FROM notifications":     "db.delete",
		"WITH x AS (SELECT 1) SELECT *": "db.query",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationName(sql), sql)
	}
}

func TestSanitizeSQL(t *testing.T) {
	got := SanitizeSQL("UPDATE users SET password = 'hunter2', token='abc' WHERE secret='s'")
	assert.NotContains(t, got, "hunter2")
	assert.NotContains(t, got, "abc")
	assert.Contains(t, got, "password ='***'")
	assert.Contains(t, got, "token='***'")
	assert.Contains(t, got, "secret='***'")
}

func TestNewOTELPluginDefaults(t *testing.T) {
	p := NewOTELPlugin(PluginConfig{})
	assert.Equal(t, "pronetwork", p.config.ServiceName)
	assert.Equal(t, 500, p.config.MaxSQLLength)
	assert.Equal(t, "otel_plugin", p.Name())
	assert.Equal(t, "pronetwork", DefaultPluginConfig().ServiceName)
}
