package schedule

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/trenvio/trenvio/pkg/model"
)

// The dataset follows the government-defined schema: train elements
// with category/operator attributes, nested route elements with
// ordered stop elements, times as seconds since midnight, and a
// metadata element carrying the validity window.

type trainXML struct {
	Number   string     `xml:"Numar,attr"`
	Category string     `xml:"CategorieTren,attr"`
	Rank     string     `xml:"Rang,attr"`
	Operator string     `xml:"Operator,attr"`
	Services string     `xml:"Servicii,attr"`
	Routes   []routeXML `xml:"Trase>Trasa"`
}

type routeXML struct {
	ID              string            `xml:"Id,attr"`
	Type            string            `xml:"Tip,attr"`
	OriginCode      string            `xml:"CodStatieInitiala,attr"`
	DestinationCode string            `xml:"CodStatieFinala,attr"`
	Elements        []routeElementXML `xml:"ElementTrasa"`
}

type routeElementXML struct {
	Sequence        string `xml:"Secventa,attr"`
	OriginCode      string `xml:"CodStaOrigine,attr"`
	OriginName      string `xml:"DenStaOrigine,attr"`
	DestinationCode string `xml:"CodStaDest,attr"`
	DestinationName string `xml:"DenStaDestinatie,attr"`
	DepartureSec    string `xml:"OraP,attr"`
	ArrivalSec      string `xml:"OraS,attr"`
	Km              string `xml:"Km,attr"`
	StopType        string `xml:"TipOprire,attr"`
	DwellSec        string `xml:"StationareSecunde,attr"`
}

type metadataXML struct {
	ValidFrom  string
	ValidUntil string
	ExportDate string
}

// parseXML walks the document as a token stream so the element nesting
// above Tren/Mt does not matter; export roots vary between editions.
func parseXML(reader io.Reader) ([]trainXML, model.ValiditySpan, error) {
	decoder := xml.NewDecoder(reader)
	decoder.CharsetReader = charset.NewReaderLabel

	var trains []trainXML
	var validity model.ValiditySpan
	sawMetadata := false

	for {
		token, err := decoder.Token()
		if token == nil || err == io.EOF {
			break
		} else if err != nil {
			return nil, validity, fmt.Errorf("decoding schedule dataset: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "Tren":
				var train trainXML
				if err := decoder.DecodeElement(&train, &element); err != nil {
					return nil, validity, fmt.Errorf("decoding train element: %w", err)
				}
				trains = append(trains, train)
			case "Mt":
				// The train elements nest inside Mt, so only the
				// attributes are read here and the walk continues.
				validity = parseValidity(metadataFromAttrs(element.Attr))
				sawMetadata = true
			}
		}
	}

	if !sawMetadata {
		return nil, validity, fmt.Errorf("schedule dataset carries no validity metadata")
	}

	return trains, validity, nil
}

func metadataFromAttrs(attrs []xml.Attr) metadataXML {
	var metadata metadataXML

	for _, attr := range attrs {
		switch attr.Name.Local {
		case "MtValabilDeLa":
			metadata.ValidFrom = attr.Value
		case "MtValabilPinaLa":
			metadata.ValidUntil = attr.Value
		case "DataExport":
			metadata.ExportDate = attr.Value
		}
	}

	return metadata
}

func parseValidity(metadata metadataXML) model.ValiditySpan {
	return model.ValiditySpan{
		ValidFrom:  parseCompactDate(metadata.ValidFrom),
		ValidUntil: parseCompactDate(metadata.ValidUntil),
		ExportDate: parseCompactDate(metadata.ExportDate),
	}
}

func parseCompactDate(value string) time.Time {
	parsed, err := time.Parse("20060102", value)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

// secondsToClock renders seconds-since-midnight as "HH:MM"; times past
// midnight wrap onto the next day's clock.
func secondsToClock(value string) string {
	if value == "" {
		return ""
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return ""
	}

	hours := (seconds / 3600) % 24
	minutes := (seconds % 3600) / 60

	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func parseKm(value string) float64 {
	km, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}

	return km
}
