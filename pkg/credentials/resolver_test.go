package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/entrhq/nblog/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		accountID string
		want      string
	}{
		{"example@naver.com", "NBLOG_PW_EXAMPLE_AT_NAVER_COM"},
		{"user.name@naver.com", "NBLOG_PW_USER_NAME_AT_NAVER_COM"},
		{"plain", "NBLOG_PW_PLAIN"},
		{"weird+id@x.io", "NBLOG_PW_WEIRD_ID_AT_X_IO"},
	}
	for _, tt := range tests {
		t.Run(tt.accountID, func(t *testing.T) {
			assert.Equal(t, tt.want, EnvKey(tt.accountID))
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	job := model.Job{AccountID: "user@naver.com", Secret: "inline-pw"}

	t.Run("env wins over everything", func(t *testing.T) {
		r := NewResolver(map[string]string{"user@naver.com": "file-pw"})
		r.lookupEnv = fakeEnv(map[string]string{"NBLOG_PW_USER_AT_NAVER_COM": "env-pw"})

		c := r.Resolve(job)
		assert.Equal(t, "env-pw", c.Secret)
		assert.Equal(t, SourceEnv, c.Source)
	})

	t.Run("secrets file wins over inline", func(t *testing.T) {
		r := NewResolver(map[string]string{"user@naver.com": "file-pw"})
		r.lookupEnv = fakeEnv(nil)

		c := r.Resolve(job)
		assert.Equal(t, "file-pw", c.Secret)
		assert.Equal(t, SourceSecretsFile, c.Source)
	})

	t.Run("inline used last", func(t *testing.T) {
		r := NewResolver(nil)
		r.lookupEnv = fakeEnv(nil)

		c := r.Resolve(job)
		assert.Equal(t, "inline-pw", c.Secret)
		assert.Equal(t, SourceInline, c.Source)
	})

	t.Run("nothing resolvable is a signal, not an error", func(t *testing.T) {
		r := NewResolver(nil)
		r.lookupEnv = fakeEnv(nil)

		c := r.Resolve(model.Job{AccountID: "user@naver.com"})
		assert.Empty(t, c.Secret)
		assert.Equal(t, SourceNone, c.Source)
	})

	t.Run("empty env value falls through", func(t *testing.T) {
		r := NewResolver(nil)
		r.lookupEnv = fakeEnv(map[string]string{"NBLOG_PW_USER_AT_NAVER_COM": ""})

		c := r.Resolve(job)
		assert.Equal(t, SourceInline, c.Source)
	})
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(map[string]string{"a@naver.com": "pw"})
	r.lookupEnv = fakeEnv(nil)
	job := model.Job{AccountID: "a@naver.com"}

	first := r.Resolve(job)
	second := r.Resolve(job)
	assert.Equal(t, first, second)
}

func TestCheckReportsEachMissingAccountOnce(t *testing.T) {
	r := NewResolver(map[string]string{"has@naver.com": "pw"})
	r.lookupEnv = fakeEnv(nil)

	jobs := []model.Job{
		{AccountID: "missing@naver.com", Index: 0},
		{AccountID: "has@naver.com", Index: 1},
		{AccountID: "missing@naver.com", Index: 2},
		{AccountID: "other@naver.com", Index: 3},
	}

	assert.Equal(t, []string{"missing@naver.com", "other@naver.com"}, r.Check(jobs))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(empty)", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "********", Mask("a-very-long-password"))

	c := ResolvedCredential{Secret: "hunter2!"}
	assert.Equal(t, "********", c.Masked())
	assert.NotContains(t, c.Masked(), "hunter")
}

func TestLoadStore(t *testing.T) {
	t.Run("empty path yields empty store", func(t *testing.T) {
		store, err := LoadStore("")
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("json secrets file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "secrets.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"user@naver.com": "pw1", "b@naver.com": "pw2"}`), 0o600))

		store, err := LoadStore(path)
		require.NoError(t, err)
		assert.Equal(t, "pw1", store["user@naver.com"])
		assert.Equal(t, "pw2", store["b@naver.com"])
	})

	t.Run("yaml secrets file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "secrets.yaml")
		require.NoError(t, os.WriteFile(path, []byte("user@naver.com: pw1\n"), 0o600))

		store, err := LoadStore(path)
		require.NoError(t, err)
		assert.Equal(t, "pw1", store["user@naver.com"])
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadStore(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestWriteStoreTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, WriteStoreTemplate(path, []string{"a@naver.com", "b@naver.com"}))

	store, err := LoadStore(path)
	require.NoError(t, err)
	assert.Equal(t, "YOUR_PASSWORD_HERE", store["a@naver.com"])
	assert.Equal(t, "YOUR_PASSWORD_HERE", store["b@naver.com"])
}
