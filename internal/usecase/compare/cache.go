package compare

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CacheKey derives the cache key for one branch's commit list. The token is
// hashed into the key rather than stored, so entries fetched with different
// credentials never alias while the credential itself stays out of the
// cache.
func CacheKey(repo RepoRef, branch string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", repo.URL, repo.Token, branch)))
	return hex.EncodeToString(sum[:])
}
