package stations

import (
	"regexp"
	"strings"
)

// The scraped sources key stations by the ASCII-folded, hyphenated
// form of the display name. The folding table is the closed set of
// Romanian diacritics the upstream slugs use, including the legacy
// cedilla variants found in the government dataset.
var diacriticReplacer = strings.NewReplacer(
	"ă", "a", "â", "a", "î", "i",
	"ș", "s", "ț", "t",
	"ş", "s", "ţ", "t",
)

var nonSlugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a station display name to its URL slug form,
// e.g. "București Nord" -> "bucuresti-nord".
func Slugify(name string) string {
	slug := diacriticReplacer.Replace(strings.ToLower(name))
	slug = nonSlugRegex.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

// SlugVariants lists the slug spellings worth trying against the
// live-board site, most likely first. The site is inconsistent about
// capitalisation for a few heavily trafficked pages.
func SlugVariants(name string) []string {
	slug := Slugify(name)

	var variants []string
	if strings.Contains(slug, "bucuresti-nord") {
		variants = append(variants, "Bucuresti-Nord")
	}

	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	if capitalised := strings.Join(parts, "-"); capitalised != slug {
		variants = append(variants, capitalised)
	}

	return append(variants, slug)
}
