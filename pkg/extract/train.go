package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/exp/slices"

	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/util"
)

// TrainPage is the structural content of one train results fragment,
// before any source-specific annotation.
type TrainPage struct {
	Operator string
	Branches []model.Branch
	Alerts   []string
}

// bare arrows between the branch button captions carry no information
var arrowTokens = []string{"→", "->", "–", "►"}

// TrainDocument pulls the branch structure out of a train results
// fragment. Multi-branch pages pair a "button-group-XXX" caption block
// with a "div-stations-branch-XXX" stop list; single-branch pages carry
// the stop list directly.
func TrainDocument(document *goquery.Document) (*TrainPage, error) {
	page := &TrainPage{
		Operator: operatorFromDocument(document),
		Alerts:   alertsFromDocument(document),
	}

	document.Find("[id^=button-group-]").Each(func(_ int, group *goquery.Selection) {
		id, _ := group.Attr("id")
		suffix := strings.TrimPrefix(id, "button-group-")

		container := document.Find("#div-stations-branch-" + suffix)
		if container.Length() == 0 {
			return
		}

		branch := model.Branch{
			Label: branchLabel(group),
			Stops: Stops(container),
		}
		if !branch.Valid() {
			return
		}

		branch.MarkEndpoints()
		branch.ReconcileDelays()
		page.Branches = append(page.Branches, branch)
	})

	if len(page.Branches) == 0 {
		branch := model.Branch{Stops: Stops(document.Selection)}
		if branch.Valid() {
			branch.MarkEndpoints()
			branch.ReconcileDelays()
			page.Branches = append(page.Branches, branch)
		}
	}

	if len(page.Branches) == 0 {
		return nil, fmt.Errorf("no usable stop list in train page")
	}

	return page, nil
}

// branchLabel joins the caption buttons into "name · from → to",
// dropping the bare arrow buttons between them.
func branchLabel(group *goquery.Selection) string {
	var parts []string

	group.Find("button").Each(func(_ int, button *goquery.Selection) {
		text := strings.TrimSpace(button.Text())
		if text == "" || slices.Contains(arrowTokens, text) {
			return
		}

		parts = append(parts, text)
	})

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + " · " + strings.Join(parts[1:], " → ")
	}
}

func operatorFromDocument(document *goquery.Document) string {
	operator := ""

	document.Find("p.text-1-1rem").EachWithBreak(func(_ int, paragraph *goquery.Selection) bool {
		text := strings.TrimSpace(paragraph.Text())
		if after, found := strings.CutPrefix(text, "Operat de"); found {
			operator = strings.TrimSpace(after)
			return false
		}

		return true
	})

	return operator
}

func alertsFromDocument(document *goquery.Document) []string {
	var alerts []string

	document.Find("div.alert").Each(func(_ int, alert *goquery.Selection) {
		text := strings.Join(strings.Fields(alert.Text()), " ")
		if text != "" {
			alerts = append(alerts, text)
		}
	})

	return util.RemoveDuplicateStrings(alerts, nil)
}
