package gitlab

import (
	"fmt"
	"net/url"
	"strings"
)

// Project locates a GitLab project behind a repository URL: the API base of
// the instance hosting it and the URL-encoded project path used in API
// routes.
type Project struct {
	APIBase     string // e.g. https://gitlab.example.com/api/v4
	EncodedPath string // e.g. group%2Fsub%2Fproject
}

// ParseRepoURL splits a repository URL like
// https://gitlab.example.com/group/project.git into the instance API base
// and the encoded project path. SSH-style URLs (git@host:group/project.git)
// are accepted and normalised to the host's https API.
func ParseRepoURL(repoURL string) (Project, error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return Project{}, fmt.Errorf("repository URL is empty")
	}

	if strings.HasPrefix(repoURL, "git@") {
		repoURL = sshToHTTPS(repoURL)
	}

	parsed, err := url.Parse(repoURL)
	if err != nil {
		return Project{}, fmt.Errorf("parse repository URL: %w", err)
	}
	if parsed.Host == "" {
		return Project{}, fmt.Errorf("repository URL %q has no host", repoURL)
	}

	path := strings.Trim(parsed.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	if path == "" || !strings.Contains(path, "/") {
		return Project{}, fmt.Errorf("repository URL %q has no project path", repoURL)
	}

	scheme := parsed.Scheme
	if scheme == "" {
		scheme = "https"
	}

	return Project{
		APIBase:     fmt.Sprintf("%s://%s/api/v4", scheme, parsed.Host),
		EncodedPath: url.PathEscape(path),
	}, nil
}

// sshToHTTPS rewrites git@host:group/project.git to https://host/group/project.git.
func sshToHTTPS(repoURL string) string {
	rest := strings.TrimPrefix(repoURL, "git@")
	host, path, found := strings.Cut(rest, ":")
	if !found {
		return repoURL
	}
	return "https://" + host + "/" + path
}
