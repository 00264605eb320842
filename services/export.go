package services

import (
	"fmt"

	"defense-schedule/models"

	"github.com/gocarina/gocsv"
)

type studentRecord struct {
	Date              string `csv:"Date"`
	TimeAndAuditorium string `csv:"Time and auditorium"`
	MeetingInfo       string `csv:"Meeting"`
	Number            int    `csv:"Number"`
	StudentName       string `csv:"Student"`
	Theme             string `csv:"Theme"`
	Supervisor        string `csv:"Supervisor"`
	Consultant        string `csv:"Consultant"`
	Reviewer          string `csv:"Reviewer"`
}

// ExportStudentsCSV выгружает все работы одной плоской таблицей
func ExportStudentsCSV(days []models.DaySchedule) ([]byte, error) {
	records := make([]*studentRecord, 0)
	for _, day := range days {
		for _, meeting := range day.CommissionMeetings {
			for _, work := range meeting.StudentWorks {
				records = append(records, &studentRecord{
					Date:              day.Date,
					TimeAndAuditorium: meeting.TimeAndAuditorium,
					MeetingInfo:       meeting.MeetingInfo,
					Number:            work.Number,
					StudentName:       work.StudentName,
					Theme:             work.Theme,
					Supervisor:        work.Supervisor,
					Consultant:        work.ConsultantName(),
					Reviewer:          work.Reviewer,
				})
			}
		}
	}

	data, err := gocsv.MarshalBytes(&records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal csv: %w", err)
	}
	return data, nil
}
