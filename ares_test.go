package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNames(t *testing.T) {
	tests := []struct {
		args           []string
		env            string
		global, mode   string
		err            bool
	}{
		{nil, "", "", "", false},
		{[]string{"a.config"}, "", "a.config", "", false},
		{[]string{"a.config", "b.config"}, "", "a.config", "b.config", false},
		{nil, "g.config", "g.config", "", false},
		{[]string{"b.config"}, "g.config", "g.config", "b.config", false},
		{[]string{"a.config", "b.config"}, "g.config", "", "", true},
	}

	for i, test := range tests {
		global, mode, err := configNames(test.args, test.env)
		if test.err {
			assert.Error(t, err, "%d", i)
			continue
		}
		require.NoError(t, err, "%d", i)
		assert.Equal(t, test.global, global, "%d", i)
		assert.Equal(t, test.mode, mode, "%d", i)
	}
}

func TestHelpStrings(t *testing.T) {
	assert.True(t, isConfig("fiducial.global.config"))
	assert.False(t, isConfig("fiducial.yaml"))
	assert.False(t, isConfig("config"))

	for _, name := range modeOrder {
		assert.Contains(t, helpStrings, name)
		assert.Contains(t, helpStrings, name+".config")
		assert.Contains(t, modeShort, name)
	}
}
