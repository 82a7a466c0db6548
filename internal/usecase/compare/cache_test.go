package compare

import "testing"

func TestCacheKey_DistinctInputsDistinctKeys(t *testing.T) {
	base := CacheKey(RepoRef{URL: "https://gitlab.example.com/g/p", Token: "tok"}, "main")

	variants := map[string]string{
		"different branch": CacheKey(RepoRef{URL: "https://gitlab.example.com/g/p", Token: "tok"}, "develop"),
		"different repo":   CacheKey(RepoRef{URL: "https://gitlab.example.com/g/other", Token: "tok"}, "main"),
		"different token":  CacheKey(RepoRef{URL: "https://gitlab.example.com/g/p", Token: "other"}, "main"),
	}

	for name, key := range variants {
		if key == base {
			t.Errorf("%s should produce a different cache key", name)
		}
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	repo := RepoRef{URL: "https://gitlab.example.com/g/p", Token: "tok"}
	if CacheKey(repo, "main") != CacheKey(repo, "main") {
		t.Error("identical inputs should produce identical keys")
	}
}

func TestCacheKey_DoesNotEmbedToken(t *testing.T) {
	repo := RepoRef{URL: "https://gitlab.example.com/g/p", Token: "glpat-supersecret"}
	key := CacheKey(repo, "main")
	if len(key) != 64 {
		t.Errorf("key should be a hex SHA-256 digest, got %q", key)
	}
}
