package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		doc    string
		fields []string
	}{
		{"empty toml", ".toml", "", nil},
		{"valid toml", ".toml", "version = 1\n[chewing]\npage_size = 5\npaging = \"clamp\"\n", nil},
		{"valid yaml", ".yaml", "chewing:\n  selection_key: \"1234qweras\"\n", nil},
		{"valid json", ".json", `{"ibus": {"bus_name": "org.example.Chewing"}}`, nil},
		{"misspelled option", ".toml", "[chewing]\npagesize = 5\n", []string{"chewing"}},
		{"out of range", ".json", `{"chewing": {"page_size": 12}}`, []string{"chewing.page_size"}},
		{"wrong type", ".yaml", "logging:\n  max_backups: many\n", []string{"logging.max_backups"}},
		{"bad enum", ".toml", "[chewing]\nselection_key = \"qwertyuiop\"\n", []string{"chewing.selection_key"}},
		{"bad bus name", ".toml", "[ibus]\nbus_name = \"chewingd\"\n", []string{"ibus.bus_name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument([]byte(tt.doc), tt.ext)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tt.fields, verrs.Fields())
		})
	}
}

func TestValidateDocumentSyntax(t *testing.T) {
	err := ValidateDocument([]byte("[chewing\n"), ".toml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestPointerField(t *testing.T) {
	assert.Equal(t, "(root)", pointerField(""))
	assert.Equal(t, "chewing.page_size", pointerField("/chewing/page_size"))
	assert.Equal(t, "a/b", pointerField("/a~1b"))
}
