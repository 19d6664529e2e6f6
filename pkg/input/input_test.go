package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJobs = `[
  {
    "sns_id": "writer@naver.com",
    "sns_pw": "hunter2",
    "sns_upload_cont": {
      "blog_title": "오늘의 가게 소개",
      "blog_top_word": "intro",
      "site_tag": "맛집,후기"
    }
  }
]`

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	result := Validate([]byte(validJobs))

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "writer@naver.com", result.Jobs[0].AccountID)
	assert.Equal(t, "오늘의 가게 소개", result.Jobs[0].Content.Title)
	assert.Equal(t, 0, result.Jobs[0].Index)
}

func TestValidateRejectsSyntaxError(t *testing.T) {
	result := Validate([]byte(`[{"sns_id": }`))

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, -1, result.Errors[0].Index)
	assert.Contains(t, result.Errors[0].Message, "invalid JSON syntax")
}

func TestValidateRejectsNonArrayRoot(t *testing.T) {
	result := Validate([]byte(`{"sns_id": "a@naver.com"}`))

	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateRejectsEmptyArray(t *testing.T) {
	result := Validate([]byte(`[]`))

	assert.False(t, result.Valid)
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		data  string
		index int
	}{
		{
			name:  "missing sns_id",
			data:  `[{"sns_upload_cont": {"blog_title": "t"}}]`,
			index: 0,
		},
		{
			name:  "empty sns_id",
			data:  `[{"sns_id": "", "sns_upload_cont": {"blog_title": "t"}}]`,
			index: 0,
		},
		{
			name:  "missing blog_title",
			data:  `[{"sns_id": "a@naver.com", "sns_upload_cont": {}}]`,
			index: 0,
		},
		{
			name: "second entry broken",
			data: `[
				{"sns_id": "a@naver.com", "sns_pw": "x", "sns_upload_cont": {"blog_title": "t"}},
				{"sns_id": "b@naver.com", "sns_pw": "x", "sns_upload_cont": {"blog_title": ""}}
			]`,
			index: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate([]byte(tc.data))

			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tc.index, result.Errors[0].Index)
		})
	}
}

func TestValidateWarnsOnMissingPassword(t *testing.T) {
	result := Validate([]byte(`[{"sns_id": "a@naver.com", "sns_upload_cont": {"blog_title": "t"}}]`))

	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ".sns_pw", result.Warnings[0].Path)
}

func TestValidateWarnsOnBadImageURL(t *testing.T) {
	result := Validate([]byte(`[{
		"sns_id": "a@naver.com", "sns_pw": "x",
		"sns_upload_cont": {"blog_title": "t", "blog_title_img": "not-a-url"}
	}]`))

	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, ".sns_upload_cont.blog_title_img", result.Warnings[0].Path)
}

func TestValidateWarnsOnTagAnomalies(t *testing.T) {
	result := Validate([]byte(`[{
		"sns_id": "a@naver.com", "sns_pw": "x",
		"sns_upload_cont": {"blog_title": "t", "site_tag": "tag1, ,tag3,"}
	}]`))

	assert.True(t, result.Valid)
	// Trailing comma and empty tags each produce one warning.
	assert.Len(t, result.Warnings, 2)
}

func TestValidateWarnsOnDuplicateTitles(t *testing.T) {
	result := Validate([]byte(`[
		{"sns_id": "a@naver.com", "sns_pw": "x", "sns_upload_cont": {"blog_title": "Same"}},
		{"sns_id": "a@naver.com", "sns_pw": "x", "sns_upload_cont": {"blog_title": "Same"}},
		{"sns_id": "b@naver.com", "sns_pw": "x", "sns_upload_cont": {"blog_title": "Same"}}
	]`))

	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 1, result.Warnings[0].Index)
}

func TestLoadFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jobs.json")
		require.NoError(t, os.WriteFile(path, []byte(validJobs), 0o600))

		result := LoadFile(path)

		assert.True(t, result.Valid)
		assert.Len(t, result.Jobs, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		result := LoadFile(filepath.Join(t.TempDir(), "absent.json"))

		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, -1, result.Errors[0].Index)
	})
}

func TestSummary(t *testing.T) {
	valid := Validate([]byte(validJobs))
	assert.Contains(t, valid.Summary(), "validation passed: 1 jobs")

	invalid := Validate([]byte(`[]`))
	assert.Contains(t, invalid.Summary(), "validation failed")
}
