package gitlab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchscope/branchscope/internal/adapter/gitlab"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name        string
		repoURL     string
		wantAPIBase string
		wantPath    string
	}{
		{
			name:        "https URL with .git suffix",
			repoURL:     "https://gitlab.example.com/group/project.git",
			wantAPIBase: "https://gitlab.example.com/api/v4",
			wantPath:    "group%2Fproject",
		},
		{
			name:        "https URL without suffix",
			repoURL:     "https://gitlab.com/group/sub/project",
			wantAPIBase: "https://gitlab.com/api/v4",
			wantPath:    "group%2Fsub%2Fproject",
		},
		{
			name:        "ssh URL normalised to https",
			repoURL:     "git@gitlab.example.com:group/project.git",
			wantAPIBase: "https://gitlab.example.com/api/v4",
			wantPath:    "group%2Fproject",
		},
		{
			name:        "http scheme preserved",
			repoURL:     "http://gitlab.local:8000/g/p",
			wantAPIBase: "http://gitlab.local:8000/api/v4",
			wantPath:    "g%2Fp",
		},
		{
			name:        "surrounding whitespace trimmed",
			repoURL:     "  https://gitlab.com/group/project  ",
			wantAPIBase: "https://gitlab.com/api/v4",
			wantPath:    "group%2Fproject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := gitlab.ParseRepoURL(tt.repoURL)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAPIBase, project.APIBase)
			assert.Equal(t, tt.wantPath, project.EncodedPath)
		})
	}
}

func TestParseRepoURL_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		repoURL string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"no project path", "https://gitlab.com"},
		{"top-level path only", "https://gitlab.com/project"},
		{"no host", "/group/project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gitlab.ParseRepoURL(tt.repoURL)
			assert.Error(t, err)
		})
	}
}
