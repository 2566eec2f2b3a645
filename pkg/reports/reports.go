package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trenvio/trenvio/pkg/database"
	"github.com/trenvio/trenvio/pkg/model"
)

// PassengerReport is a rider-submitted observation about one train on
// one service day. Reports complement the scraped delay figures with
// on-the-ground detail the upstream sources never publish.
type PassengerReport struct {
	PrimaryIdentifier string `json:"id" groups:"basic,detailed"`

	TrainNumber string `json:"train_number" groups:"basic,detailed"`
	StationName string `json:"station_name,omitempty" groups:"basic,detailed"`
	ServiceDay  string `json:"service_day" groups:"basic,detailed"`

	ReportType   string `json:"report_type" groups:"basic,detailed"`
	DelayMinutes int    `json:"delay,omitempty" groups:"basic,detailed"`
	Crowding     string `json:"crowding,omitempty" groups:"basic,detailed"`
	SeatsFree    int    `json:"seats_free,omitempty" groups:"basic,detailed"`
	Comment      string `json:"comment,omitempty" groups:"basic,detailed"`

	CreationDateTime time.Time `json:"creation_datetime" groups:"basic,detailed"`
}

var reportTypes = map[string]bool{
	"delay":     true,
	"crowding":  true,
	"seats":     true,
	"incident":  true,
	"amenities": true,
}

var crowdingLevels = map[string]bool{
	"":         true,
	"empty":    true,
	"light":    true,
	"moderate": true,
	"full":     true,
	"crush":    true,
}

var ErrDatabaseUnavailable = errors.New("passenger reports need a database connection")

// Validate normalises and checks a submission.
func (r *PassengerReport) Validate() error {
	r.TrainNumber = model.CleanTrainNumber(r.TrainNumber)
	r.ReportType = strings.ToLower(strings.TrimSpace(r.ReportType))
	r.Crowding = strings.ToLower(strings.TrimSpace(r.Crowding))

	if r.TrainNumber == "" {
		return errors.New("report needs a train number")
	}
	if !reportTypes[r.ReportType] {
		return errors.New("unknown report type")
	}
	if !crowdingLevels[r.Crowding] {
		return errors.New("unknown crowding level")
	}
	if r.ReportType == "delay" && (r.DelayMinutes < 0 || r.DelayMinutes > 24*60) {
		return errors.New("delay minutes out of range")
	}

	if r.ServiceDay == "" {
		r.ServiceDay = time.Now().In(model.Timezone()).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", r.ServiceDay); err != nil {
		return errors.New("service day must be YYYY-MM-DD")
	}

	return nil
}

// Create stores a validated report.
func Create(ctx context.Context, report *PassengerReport) error {
	if !database.Connected() {
		return ErrDatabaseUnavailable
	}

	if err := report.Validate(); err != nil {
		return err
	}

	report.CreationDateTime = time.Now()

	collection := database.GetCollection("passenger_reports")
	inserted, err := collection.InsertOne(ctx, report)
	if err != nil {
		return err
	}

	if id, ok := inserted.InsertedID.(primitive.ObjectID); ok {
		report.PrimaryIdentifier = id.Hex()
	}

	return nil
}

// ForTrain returns the reports filed for a train, newest first,
// optionally narrowed to one service day.
func ForTrain(ctx context.Context, trainNumber string, serviceDay string) ([]PassengerReport, error) {
	if !database.Connected() {
		return nil, ErrDatabaseUnavailable
	}

	filter := bson.M{"trainnumber": model.CleanTrainNumber(trainNumber)}
	if serviceDay != "" {
		filter["serviceday"] = serviceDay
	}

	collection := database.GetCollection("passenger_reports")
	cursor, err := collection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"creationdatetime": -1}).SetLimit(200))
	if err != nil {
		return nil, err
	}

	reports := []PassengerReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}

	return reports, nil
}

// Summary condenses a train's reports into headline figures.
type Summary struct {
	TrainNumber string `json:"train_number" groups:"basic,detailed"`
	ServiceDay  string `json:"service_day,omitempty" groups:"basic,detailed"`

	ReportCount       int            `json:"report_count" groups:"basic,detailed"`
	AverageDelay      int            `json:"average_delay,omitempty" groups:"basic,detailed"`
	CrowdingBreakdown map[string]int `json:"crowding,omitempty" groups:"basic,detailed"`
}

func Summarise(ctx context.Context, trainNumber string, serviceDay string) (*Summary, error) {
	reports, err := ForTrain(ctx, trainNumber, serviceDay)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TrainNumber:       model.CleanTrainNumber(trainNumber),
		ServiceDay:        serviceDay,
		ReportCount:       len(reports),
		CrowdingBreakdown: map[string]int{},
	}

	delaySum := 0
	delayReports := 0
	for _, report := range reports {
		if report.ReportType == "delay" {
			delaySum += report.DelayMinutes
			delayReports++
		}
		if report.Crowding != "" {
			summary.CrowdingBreakdown[report.Crowding]++
		}
	}

	if delayReports > 0 {
		summary.AverageDelay = delaySum / delayReports
	}

	return summary, nil
}
