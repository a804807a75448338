// Package changelog renders upstream commit messages into the news text
// embedded in an addon manifest.
package changelog

import (
	"fmt"
	"strings"
	"time"
)

// AllHistory is the range spec used when an addon has no baseline commit,
// meaning every commit reachable from the release commit counts.
const AllHistory = "-1"

// RangeSpec returns the commit range covering everything between the
// baseline commit and the release commit.
func RangeSpec(oldCommit, newCommit string) string {
	if oldCommit == "" {
		return AllHistory
	}
	return oldCommit + ".." + newCommit
}

// Format renders the most recent limit messages as "- " bullet lines,
// keeping only the first paragraph of each message. Messages that reduce
// to nothing are dropped.
func Format(messages []string, limit int) string {
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}

	var lines []string
	for _, msg := range messages {
		p := firstParagraph(msg)
		if p == "" {
			continue
		}
		lines = append(lines, "- "+p)
	}
	return strings.Join(lines, "\n")
}

// NewsBlock labels a formatted changelog with the released version, the
// short commit id and the release date in day/month/year form.
func NewsBlock(releaseVersion, shortCommit string, date time.Time, changes string) string {
	return fmt.Sprintf("%s #%s (%s)\n%s", releaseVersion, shortCommit, date.Format("02/01/2006"), changes)
}

func firstParagraph(msg string) string {
	msg = strings.TrimSpace(strings.ReplaceAll(msg, "\r\n", "\n"))
	if idx := strings.Index(msg, "\n\n"); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(strings.ReplaceAll(msg, "\n", " "))
}
