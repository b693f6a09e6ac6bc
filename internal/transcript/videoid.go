package transcript

import (
	"regexp"
	"strings"

	"github.com/yildizm/vidsynth/internal/common"
)

var (
	videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
	bareIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ExtractVideoID returns the 11 character video id of a watch URL, a short
// link or a bare id
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}
	if match := videoIDPattern.FindStringSubmatch(ref); match != nil {
		return match[1], nil
	}
	return "", common.NewNotFoundError(ref)
}
