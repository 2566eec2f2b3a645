package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trenvio/trenvio/pkg/model"
)

var (
	clockRegex     = regexp.MustCompile(`\b(?:[01]?\d|2[0-3]):[0-5]\d\b`)
	plusDelayRegex = regexp.MustCompile(`\+\s*(\d+)\s*min`)
	lateTextRegex  = regexp.MustCompile(`(?i)(?:întârziere|intarziere|întârzie|intarzie|estimat)\D{0,40}?(\d+)\s*min`)
	platformRegex  = regexp.MustCompile(`(?i)linia\s+([0-9A-Za-z]+)`)
)

func isOnTimeText(text string) bool {
	return strings.Contains(strings.ToLower(text), "la timp")
}

func isCancelledText(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "anulat") || strings.Contains(lower, "suspendat")
}

// DelayFromText reads one delay statement. Nil means the text says
// nothing about delay.
func DelayFromText(text string) *int {
	if isCancelledText(text) {
		cancelled := model.DelayCancelled
		return &cancelled
	}

	if isOnTimeText(text) {
		zero := 0
		return &zero
	}

	if match := plusDelayRegex.FindStringSubmatch(text); match != nil {
		minutes, _ := strconv.Atoi(match[1])
		return &minutes
	}

	if match := lateTextRegex.FindStringSubmatch(text); match != nil {
		minutes, _ := strconv.Atoi(match[1])
		return &minutes
	}

	return nil
}

// DelayFromUnit prefers the styled delay spans; only when no span says
// anything does it fall back to the unit's free text.
func DelayFromUnit(unit *goquery.Selection) *int {
	var delay *int

	unit.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		class, _ := span.Attr("class")
		if !strings.Contains(class, "color-") && !strings.Contains(class, "delay") {
			return true
		}

		if parsed := DelayFromText(span.Text()); parsed != nil {
			delay = parsed
			return false
		}

		return true
	})

	if delay != nil {
		return delay
	}

	return DelayFromText(unit.Text())
}

// PlatformFromText extracts a platform designation such as "linia 3".
func PlatformFromText(text string) string {
	if match := platformRegex.FindStringSubmatch(text); match != nil {
		return match[1]
	}

	return ""
}

// ClocksInText returns every "HH:MM" token in document order.
func ClocksInText(text string) []string {
	return clockRegex.FindAllString(text, -1)
}

func clockTimes(sel *goquery.Selection) []string {
	return ClocksInText(sel.Text())
}

// StripDelaySpans returns the selection's text with the styled delay
// span contents removed, so a clock regex over it cannot pick up an
// estimated-arrival time as a scheduled one.
func StripDelaySpans(unit *goquery.Selection) string {
	text := unit.Text()

	unit.Find("span").Each(func(_ int, span *goquery.Selection) {
		class, _ := span.Attr("class")
		if !strings.Contains(class, "color-") && !strings.Contains(class, "delay") {
			return
		}

		if spanText := span.Text(); spanText != "" {
			text = strings.Replace(text, spanText, "", 1)
		}
	})

	return text
}
