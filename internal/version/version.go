// Package version centralizes cache-key versioning for the agent's logical
// components. Version strings are baked into cache keys, so bumping one
// invalidates every cached response produced by the old logic.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the cached logic paths.
// Bump a component before deploying a behavior change to it.
var ComponentVersions = struct {
	// Services covers the tool-service implementations (ride, weather, clock).
	Services string
	// PromptLogic covers fallback message assembly for the conversational path.
	PromptLogic string
}{
	Services:    "v1.0",
	PromptLogic: "v1.0",
}

// GenerateVersionedCacheKey builds a version-aware cache key from a prefix
// and the user's prompt. Identical prompts against changed logic produce
// different keys, so stale entries are simply never matched.
func GenerateVersionedCacheKey(prefix, prompt string) string {
	hasher := sha256.New()
	hasher.Write([]byte(prompt))
	promptHash := hex.EncodeToString(hasher.Sum(nil))

	versionString := fmt.Sprintf("sv%s_pv%s", ComponentVersions.Services, ComponentVersions.PromptLogic)
	return fmt.Sprintf("%s:%s:%s", prefix, promptHash, versionString)
}
