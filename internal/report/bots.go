package report

import "strings"

// knownBots are automation accounts whose reviews and comments carry
// no signal for a human digest.
var knownBots = map[string]bool{
	"graphite-app":                  true,
	"caution-tape-bot":              true,
	"observe-monitoring":            true,
	"shopify-code-magic-production": true,
	"dependabot":                    true,
	"github-actions":                true,
	"codecov":                       true,
	"renovate":                      true,
	"greenkeeper":                   true,
	"snyk-bot":                      true,
	"test-oversight-service":        true,
	"admin-web-ci-bot":              true,
	"shopify-review-assigner":       true,
}

// IsKnownBot reports whether a login is on the known automation
// account list. Unlike IsBot it does not match the GitHub app suffix.
func IsKnownBot(login string) bool {
	return knownBots[login]
}

// IsBot reports whether a login belongs to a known automation account
// or carries the GitHub app suffix.
func IsBot(login string) bool {
	return IsKnownBot(login) || strings.HasSuffix(login, "[bot]")
}
