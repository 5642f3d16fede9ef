package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/minamirinkan/sample-sub000/config"
	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/model"
	"github.com/minamirinkan/sample-sub000/internal/repository"
	"github.com/minamirinkan/sample-sub000/internal/timetable"
)

const sourceMakeup = "makeup"

// CalendarService 学生/讲师月历业务接口
//
// 每一天独立走回退解析（回溯月数使用 event_lookback_months），
// 同一次查询内的文档读取会被缓存，一个月最多读取每个星期模板链一次。
type CalendarService interface {
	StudentEvents(ctx context.Context, classroom, studentID, yearMonth string) (*dto.CalendarResponse, error)
	TeacherEvents(ctx context.Context, classroom, teacherCode, yearMonth string) (*dto.CalendarResponse, error)
	// RenderICS 将事件渲染为 iCalendar 文本（schedule.timezone 时区）
	RenderICS(resp *dto.CalendarResponse, title string) ([]byte, error)
}

type calendarService struct {
	cfg     *config.ScheduleConfig
	repo    *repository.Repository
	periods PeriodService
	logger  *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.ScheduleConfig, repo *repository.Repository, periods PeriodService, logger *zap.Logger) CalendarService {
	return &calendarService{cfg: cfg, repo: repo, periods: periods, logger: logger}
}

// cellMatcher 从一个单元格中挑出需要生成事件的学生
type cellMatcher func(row *timetable.Row, entry *model.StudentEntry) bool

func (s *calendarService) StudentEvents(ctx context.Context, classroom, studentID, yearMonth string) (*dto.CalendarResponse, error) {
	events, periods, err := s.collect(ctx, classroom, yearMonth, func(_ *timetable.Row, e *model.StudentEntry) bool {
		return e.StudentID == studentID
	})
	if err != nil {
		return nil, err
	}

	lessons, err := s.repo.MakeupLesson.ListByStudent(ctx, studentID, classroom)
	if err != nil {
		ctxLogger(ctx, s.logger, classroom).Error("查询振替授業失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	events = mergeMakeupLessons(events, lessons, studentID, yearMonth, periods)

	sortEvents(events)
	return &dto.CalendarResponse{Month: yearMonth, Events: events}, nil
}

func (s *calendarService) TeacherEvents(ctx context.Context, classroom, teacherCode, yearMonth string) (*dto.CalendarResponse, error) {
	events, _, err := s.collect(ctx, classroom, yearMonth, func(row *timetable.Row, _ *model.StudentEntry) bool {
		return row.Teacher != nil && row.Teacher.Code == teacherCode
	})
	if err != nil {
		return nil, err
	}
	sortEvents(events)
	return &dto.CalendarResponse{Month: yearMonth, Events: events}, nil
}

func (s *calendarService) collect(ctx context.Context, classroom, yearMonth string, match cellMatcher) ([]model.LessonEvent, []model.Period, error) {
	days, err := timetable.DaysInMonth(yearMonth)
	if err != nil {
		return nil, nil, err
	}
	periods, err := loadPeriods(ctx, s.periods, classroom, s.logger)
	if err != nil {
		return nil, nil, err
	}

	r := newResolver(newMemoScheduleRepo(s.repo.Schedule), s.logger)
	events := []model.LessonEvent{}
	for _, day := range days {
		scope, err := timetable.DateScope(day)
		if err != nil {
			return nil, nil, err
		}
		res, err := r.resolve(ctx, classroom, scope, s.cfg.EventLookbackMonths, len(periods))
		if err != nil {
			return nil, nil, err
		}
		if res.source == SourceSynthesized {
			continue
		}
		for ri := range res.grid.Rows {
			row := &res.grid.Rows[ri]
			for p, cell := range row.Periods {
				for i := range cell {
					if !match(row, &cell[i]) {
						continue
					}
					events = append(events, newLessonEvent(scope, p, periods, row, &cell[i], res.source))
				}
			}
		}
	}
	return events, periods, nil
}

func newLessonEvent(scope timetable.Scope, period int, periods []model.Period, row *timetable.Row, e *model.StudentEntry, source Source) model.LessonEvent {
	ev := model.LessonEvent{
		Date:        scope.Date,
		Weekday:     scope.Weekday,
		PeriodIndex: period + 1,
		StudentID:   e.StudentID,
		StudentName: e.Name,
		Subject:     e.Subject,
		ClassType:   e.ClassType,
		Status:      e.Status,
		Source:      string(source),
	}
	if period < len(periods) {
		ev.PeriodLabel = periods[period].Label
		ev.Time = periods[period].Time
	}
	if row.IsLane() {
		ev.Status = row.Status
	} else {
		t := *row.Teacher
		ev.Teacher = &t
	}
	return ev
}

// mergeMakeupLessons 合并振替授業；同一日期同一节次已有事件时不重复添加
func mergeMakeupLessons(events []model.LessonEvent, lessons []model.MakeupLesson, studentID, yearMonth string, periods []model.Period) []model.LessonEvent {
	seen := make(map[string]bool, len(events))
	for _, ev := range events {
		seen[eventSlot(ev.Date, ev.PeriodIndex)] = true
	}
	for _, l := range lessons {
		if !strings.HasPrefix(l.Date, yearMonth+"-") || seen[eventSlot(l.Date, l.Period)] {
			continue
		}
		scope, err := timetable.DateScope(l.Date)
		if err != nil {
			continue
		}
		ev := model.LessonEvent{
			Date:        l.Date,
			Weekday:     scope.Weekday,
			PeriodIndex: l.Period,
			Teacher:     l.Teacher,
			StudentID:   studentID,
			Subject:     l.Subject,
			Status:      l.Status,
			Source:      sourceMakeup,
		}
		if ev.Status == "" {
			ev.Status = timetable.StatusMakeup
		}
		if l.Period >= 1 && l.Period <= len(periods) {
			ev.PeriodLabel = periods[l.Period-1].Label
			ev.Time = periods[l.Period-1].Time
		}
		seen[eventSlot(l.Date, l.Period)] = true
		events = append(events, ev)
	}
	return events
}

func eventSlot(date string, period int) string {
	return fmt.Sprintf("%s#%d", date, period)
}

func sortEvents(events []model.LessonEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].PeriodIndex < events[j].PeriodIndex
	})
}
