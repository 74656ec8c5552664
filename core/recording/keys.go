package recording

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	keyRoot       = "recordings"
	defaultExt    = ".m4a"
	fallbackSlug  = "recording"
	maxSlugLength = 80
)

var (
	extPattern     = regexp.MustCompile(`(?i)\.[a-z0-9]+$`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases v, collapses every run of other characters into "-",
// trims dashes at both ends and cuts the result to 80 bytes.
func Slugify(v string) string {
	s := nonSlugPattern.ReplaceAllString(strings.ToLower(v), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLength {
		s = s[:maxSlugLength]
	}
	return s
}

// ObjectKey builds recordings/{owner}/{yyyy}/{mm}/{epoch_ms}-{slug}{ext}.
// Year and month are taken in UTC.
func ObjectKey(ownerID, fileName string, now time.Time) string {
	ext := defaultExt
	if m := extPattern.FindString(fileName); m != "" {
		ext = strings.ToLower(m)
	}
	slug := Slugify(extPattern.ReplaceAllString(fileName, ""))
	if slug == "" {
		slug = fallbackSlug
	}

	utc := now.UTC()
	return fmt.Sprintf("%s/%s/%04d/%02d/%d-%s%s",
		keyRoot, ownerID, utc.Year(), int(utc.Month()), utc.UnixMilli(), slug, ext)
}

// OwnerPrefix is the key prefix every object of ownerID sits under.
func OwnerPrefix(ownerID string) string {
	return keyRoot + "/" + ownerID + "/"
}
