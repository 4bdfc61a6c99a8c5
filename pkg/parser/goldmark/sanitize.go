package goldmark

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

//nolint:gochecknoglobals // Compiled once.
var (
	anchorIDPattern = regexp.MustCompile(`^` + regexp.QuoteMeta(scrollsync.AnchorPrefix) + `[0-9]+$`)
	classPattern    = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)
)

// newPolicy returns a user-generated-content policy that keeps anchor ids and the classes
// used by highlighted code.
func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(anchorIDPattern).Globally()
	policy.AllowAttrs("class").Matching(classPattern).OnElements("pre", "code", "span")
	return policy
}
