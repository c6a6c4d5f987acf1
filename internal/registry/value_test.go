package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		wantStr  string
		wantList []string
		isList   bool
		wantErr  bool
	}{
		{name: "nil", raw: nil, wantStr: ""},
		{name: "string", raw: "furo", wantStr: "furo", wantList: []string{"furo"}},
		{name: "int", raw: 120, wantStr: "120", wantList: []string{"120"}},
		{name: "int64 from toml", raw: int64(80), wantStr: "80", wantList: []string{"80"}},
		{name: "whole float", raw: float64(100), wantStr: "100", wantList: []string{"100"}},
		{name: "bool", raw: true, wantStr: "true", wantList: []string{"true"}},
		{name: "string slice", raw: []string{"en", "fr"}, wantStr: "en, fr", wantList: []string{"en", "fr"}, isList: true},
		{name: "yaml list", raw: []interface{}{"a", 2}, wantStr: "a, 2", wantList: []string{"a", "2"}, isList: true},
		{name: "nested list", raw: []interface{}{[]interface{}{"a"}}, wantErr: true},
		{name: "map", raw: map[string]interface{}{"a": 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := newValue(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, v.String())
			assert.Equal(t, tt.wantList, v.Strings())
			assert.Equal(t, tt.isList, v.IsList())
		})
	}
}

func TestValueInt(t *testing.T) {
	n, err := StringValue(" 42 ").Int()
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = StringValue("many").Int()
	assert.Error(t, err)

	_, err = ListValue("1", "2").Int()
	assert.Error(t, err)
}
