package service

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/minamirinkan/sample-sub000/internal/dto"
	"github.com/minamirinkan/sample-sub000/internal/model"
)

// ── iCalendar 导出 ──────────────────────────────────────────
//
// 将月历事件转为 RFC 5545 日历，供讲师/家长订阅。
//   - UID 由日期、节次、对象和来源确定，重复导出时订阅端原地更新
//   - 节次时间 "13:00-14:20" 解析为起止时刻；无法解析时输出全天事件
// ─────────────────────────────────────────────────────────────

const icsProductID = "-//juku//timetable//JA"

func (s *calendarService) RenderICS(resp *dto.CalendarResponse, title string) ([]byte, error) {
	return renderICS(resp, title, s.cfg.Location(), time.Now())
}

func renderICS(resp *dto.CalendarResponse, title string, loc *time.Location, now time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(title)
	cal.SetXWRTimezone(loc.String())

	for i := range resp.Events {
		ev := &resp.Events[i]
		day, err := time.ParseInLocation("2006-01-02", ev.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("事件日期无效 %q: %w", ev.Date, err)
		}

		vevent := cal.AddEvent(eventUID(ev))
		vevent.SetDtStampTime(now.UTC())
		if start, end, ok := periodRange(day, ev.Time); ok {
			vevent.SetStartAt(start.UTC())
			vevent.SetEndAt(end.UTC())
		} else {
			vevent.SetAllDayStartAt(day)
		}
		vevent.SetSummary(eventSummary(ev))
		vevent.SetDescription(eventDescription(ev))
	}
	return []byte(cal.Serialize()), nil
}

// periodRange 解析 "HH:MM-HH:MM"
func periodRange(day time.Time, span string) (time.Time, time.Time, bool) {
	from, to, found := strings.Cut(span, "-")
	if !found {
		return time.Time{}, time.Time{}, false
	}
	start, err1 := time.ParseInLocation("2006-01-02 15:04", day.Format("2006-01-02")+" "+strings.TrimSpace(from), day.Location())
	end, err2 := time.ParseInLocation("2006-01-02 15:04", day.Format("2006-01-02")+" "+strings.TrimSpace(to), day.Location())
	if err1 != nil || err2 != nil || !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func eventUID(ev *model.LessonEvent) string {
	who := ev.StudentID
	if ev.Teacher != nil {
		who += "." + ev.Teacher.Code
	}
	return fmt.Sprintf("%s-p%d-%s-%s@juku", ev.Date, ev.PeriodIndex, who, ev.Source)
}

func eventSummary(ev *model.LessonEvent) string {
	parts := []string{}
	if ev.PeriodLabel != "" {
		parts = append(parts, ev.PeriodLabel)
	}
	if ev.Subject != "" {
		parts = append(parts, ev.Subject)
	}
	if ev.StudentName != "" {
		parts = append(parts, ev.StudentName)
	}
	if ev.Status != "" {
		parts = append(parts, "("+ev.Status+")")
	}
	return strings.Join(parts, " ")
}

func eventDescription(ev *model.LessonEvent) string {
	lines := []string{}
	if ev.Teacher != nil {
		lines = append(lines, "講師: "+ev.Teacher.Name)
	}
	if ev.ClassType != "" {
		lines = append(lines, "授業形態: "+ev.ClassType)
	}
	lines = append(lines, "source: "+ev.Source)
	return strings.Join(lines, "\n")
}
