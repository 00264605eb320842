package models

// StudentWork - работа одного студента на заседании
type StudentWork struct {
	Number      int    `json:"number"`
	StudentName string `json:"studentName"`
	Theme       string `json:"theme"`
	Supervisor  string `json:"supervisor"`
	// nil - консультант не найден в таблице тем; указатель на "" - в таблице пусто
	Consultant *string `json:"consultant,omitempty"`
	Reviewer   string  `json:"reviewer"`

	HasReport           bool `json:"hasReport"`
	HasPresentation     bool `json:"hasPresentation"`
	HasSupervisorReview bool `json:"hasSupervisorReview"`
	HasConsultantReview bool `json:"hasConsultantReview"`
	HasReviewerReview   bool `json:"hasReviewerReview"`
}

// ConsultantName возвращает консультанта или пустую строку
func (w StudentWork) ConsultantName() string {
	if w.Consultant == nil {
		return ""
	}
	return *w.Consultant
}

// IsComplete - все пять файлов на месте
func (w StudentWork) IsComplete() bool {
	return w.HasReport && w.HasPresentation && w.HasSupervisorReview &&
		w.HasConsultantReview && w.HasReviewerReview
}

// CommissionMeeting - одно заседание комиссии
type CommissionMeeting struct {
	TimeAndAuditorium string        `json:"timeAndAuditorium"`
	MeetingInfo       string        `json:"meetingInfo"`
	StudentWorks      []StudentWork `json:"studentWorks"`
}

// DaySchedule - один день защит
type DaySchedule struct {
	Date               string              `json:"date"`
	CommissionMembers  []string            `json:"commissionMembers"`
	CommissionMeetings []CommissionMeeting `json:"commissionMeetings"`
}

// StudentWorks возвращает указатели на все работы дня в порядке заседаний
func (d *DaySchedule) StudentWorks() []*StudentWork {
	works := make([]*StudentWork, 0)
	for i := range d.CommissionMeetings {
		meeting := &d.CommissionMeetings[i]
		for j := range meeting.StudentWorks {
			works = append(works, &meeting.StudentWorks[j])
		}
	}
	return works
}

// MeetingInfo - разобранное описание заседания "<кафедра>, <уровень>, <ГЭК>"
type MeetingInfo struct {
	Chair      string `json:"chair"`
	Level      string `json:"level"`
	Commission string `json:"commission"`
}
