package stations

import (
	"strings"

	"github.com/trenvio/trenvio/pkg/model"
)

// nameOverrides pins inputs whose canonical station entry differs
// materially from the naive normalisation. Keyed by slug.
var nameOverrides = map[string]string{
	"bucuresti-nord": "București Nord",
	"cluj-napoca":    "Cluj-Napoca",
	"timisoara-nord": "Timișoara Nord",
	"targu-mures":    "Târgu Mureș",
}

// legacyStationIDs maps the numeric ids the older app callers still
// send to display names the directory can resolve.
var legacyStationIDs = map[string]string{
	"10001": "București Nord",
	"10101": "București Basarab",
	"10102": "București Obor",
	"10002": "Cluj-Napoca",
	"10003": "Constanța",
	"10004": "Brașov",
	"10005": "Timișoara Nord",
	"10006": "Iași",
	"10007": "Craiova",
	"10008": "Galați",
	"10009": "Ploiești Sud",
	"10109": "Ploiești Vest",
	"10010": "Oradea",
	"10011": "Arad",
	"10071": "Sinaia",
	"10072": "Predeal",
}

// Resolve maps a human- or caller-supplied station name to a station
// identity. Resolution order: exact folded match, then substring
// match, then a literal slugification of the input as a best-effort
// guess. The result is never an error; callers decide whether a guess
// is acceptable.
func (d *Directory) Resolve(input string) model.Station {
	name := strings.TrimSpace(input)
	if override, ok := nameOverrides[Slugify(name)]; ok {
		name = override
	}

	snapshot := d.Current()

	if station, ok := snapshot.bySlugLookup(Slugify(name)); ok {
		return station
	}

	folded := Slugify(name)
	for _, station := range snapshot.Stations {
		if strings.Contains(Slugify(station.Name), folded) {
			return station
		}
	}

	// Last resort: a guessed identity built from the input itself. A
	// guess has no dataset code, so the slug doubles as its id.
	return model.Station{
		Name: titleCase(name),
		Code: Slugify(name),
		Slug: Slugify(name),
	}
}

// ResolveLegacyID maps a numeric station id. Government dataset codes
// take precedence; the legacy alias table covers ids older app callers
// still send, and anything else is treated as a station name.
func (d *Directory) ResolveLegacyID(id string) model.Station {
	if station, ok := d.ByCode(id); ok {
		return station
	}

	if name, ok := legacyStationIDs[id]; ok {
		return d.Resolve(name)
	}

	return d.Resolve(strings.ReplaceAll(id, "-", " "))
}

func titleCase(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > 0 {
			words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
		}
	}

	return strings.Join(words, " ")
}
