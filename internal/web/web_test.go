package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"login.tmpl", "dashboard.tmpl", "teachers.tmpl", "teacher_form.tmpl", "analytics.tmpl"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestLoginTemplateRendersFlashes(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "login.tmpl", map[string]interface{}{
		"Title":   "Sign in",
		"Email":   "admin@example.com",
		"Flashes": []Flash{{Kind: FlashError, Message: "invalid email or password"}},
	})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, `class="flash error"`)
	assert.Contains(t, html, "invalid email or password")
	assert.Contains(t, html, `value="admin@example.com"`)
	assert.NotContains(t, html, "Sign out")
}

func TestTemplateFuncs(t *testing.T) {
	assert.Equal(t, "-", funcs["date"].(func(time.Time) string)(time.Time{}))
	assert.Equal(t, "05 Mar 2024", funcs["date"].(func(time.Time) string)(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "+12.5%", funcs["signed"].(func(float64) string)(12.5))
	assert.True(t, funcs["same"].(func(a, b interface{}) bool)("Active", "Active"))
}
