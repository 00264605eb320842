package services

import (
	"time"

	"defense-schedule/models"

	"github.com/patrickmn/go-cache"
)

// ScheduleCache хранит разобранные расписания по источнику
type ScheduleCache struct {
	cache *cache.Cache
}

func NewScheduleCache(defaultExpiration, cleanupInterval time.Duration) *ScheduleCache {
	return &ScheduleCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

// Get возвращает копию дней, чтобы проверка файлов не меняла закэшированные данные
func (s *ScheduleCache) Get(location string) ([]models.DaySchedule, bool) {
	cached, found := s.cache.Get(location)
	if !found {
		return nil, false
	}
	days, ok := cached.([]models.DaySchedule)
	if !ok {
		return nil, false
	}
	return cloneDays(days), true
}

func (s *ScheduleCache) Set(location string, days []models.DaySchedule) {
	s.cache.Set(location, cloneDays(days), cache.DefaultExpiration)
}

func (s *ScheduleCache) Delete(location string) {
	s.cache.Delete(location)
}

func (s *ScheduleCache) Flush() {
	s.cache.Flush()
}

func cloneDays(days []models.DaySchedule) []models.DaySchedule {
	out := make([]models.DaySchedule, len(days))
	for i, day := range days {
		out[i] = models.DaySchedule{
			Date:               day.Date,
			CommissionMembers:  append([]string(nil), day.CommissionMembers...),
			CommissionMeetings: make([]models.CommissionMeeting, len(day.CommissionMeetings)),
		}
		for j, meeting := range day.CommissionMeetings {
			meeting.StudentWorks = append([]models.StudentWork(nil), meeting.StudentWorks...)
			out[i].CommissionMeetings[j] = meeting
		}
	}
	return out
}
