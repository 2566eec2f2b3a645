package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNormalises(t *testing.T) {
	report := PassengerReport{
		TrainNumber: "IC 536",
		ReportType:  " Delay ",
		Crowding:    "FULL",
		DelayMinutes: 20,
	}

	require.NoError(t, report.Validate())

	assert.Equal(t, "536", report.TrainNumber)
	assert.Equal(t, "delay", report.ReportType)
	assert.Equal(t, "full", report.Crowding)
	assert.NotEmpty(t, report.ServiceDay)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]PassengerReport{
		"missing train number": {ReportType: "delay"},
		"unknown report type":  {TrainNumber: "536", ReportType: "vibes"},
		"unknown crowding":     {TrainNumber: "536", ReportType: "crowding", Crowding: "cozy"},
		"negative delay":       {TrainNumber: "536", ReportType: "delay", DelayMinutes: -5},
		"bad service day":      {TrainNumber: "536", ReportType: "delay", ServiceDay: "01.06.2025"},
	}

	for name, report := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, report.Validate())
		})
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	report := PassengerReport{TrainNumber: "536", ReportType: "delay"}

	err := Create(t.Context(), &report)
	assert.ErrorIs(t, err, ErrDatabaseUnavailable)
}
