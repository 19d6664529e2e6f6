package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/nblog/pkg/config"
)

func resetSelection() {
	postAll = false
	postIndex = -1
	postAccount = ""
}

func TestValidateSelection(t *testing.T) {
	cases := []struct {
		name    string
		all     bool
		index   int
		account string
		wantErr bool
	}{
		{name: "none", index: -1, wantErr: true},
		{name: "all", all: true, index: -1},
		{name: "index", index: 0},
		{name: "account", index: -1, account: "*@naver.com"},
		{name: "all and index", all: true, index: 3, wantErr: true},
		{name: "all and account", all: true, index: -1, account: "x", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetSelection()
			postAll = tc.all
			postIndex = tc.index
			postAccount = tc.account

			err := validateSelection()

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildFilter(t *testing.T) {
	resetSelection()
	postIndex = 4
	postAccount = ""

	filter := buildFilter()

	require.NotNil(t, filter.Index)
	assert.Equal(t, 4, *filter.Index)
	assert.Empty(t, filter.Account)

	resetSelection()
	postAccount = "*@naver.com"
	filter = buildFilter()
	assert.Nil(t, filter.Index)
	assert.Equal(t, "*@naver.com", filter.Account)
}

func TestApplyOverridesKeepsConfiguredValuesWhenFlagsUnpassed(t *testing.T) {
	cfg := config.Default()
	cfg.Headless = false
	cfg.MaxRetries = 5

	applyOverrides(postCmd, &cfg)

	assert.False(t, cfg.Headless)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestApplyOverridesAppliesPassedFlags(t *testing.T) {
	defer func() {
		postCmd.Flags().Lookup("headless").Changed = false
		postCmd.Flags().Lookup("max-retries").Changed = false
		postHeadless = true
		postRetries = -1
	}()
	require.NoError(t, postCmd.Flags().Set("headless", "true"))
	require.NoError(t, postCmd.Flags().Set("max-retries", "7"))

	cfg := config.Default()
	cfg.Headless = false

	applyOverrides(postCmd, &cfg)

	assert.True(t, cfg.Headless)
	assert.Equal(t, 7, cfg.MaxRetries)
}
