package providerRepo

import (
	"testing"
	"time"

	"solvit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedCodec() (codec, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return newCodec(zap.New(core), time.UTC), logs
}

func slotDoc(sh, sm, eh, em interface{}) bson.M {
	return bson.M{"startHour": sh, "startMinute": sm, "endHour": eh, "endMinute": em}
}

func TestDecodeProvider_FullDocument(t *testing.T) {
	c, logs := observedCodec()
	start := time.Date(2024, 12, 28, 10, 0, 0, 0, time.UTC)

	raw := bson.M{
		"_id":              primitive.NewObjectID(),
		"id":               "prov-1",
		"profile":          bson.M{"providerName": "Ada Plumbing", "status": "active"},
		"scheduleVersion":  int32(4),
		"serviceCatalogue": bson.M{"mode": "in_home"},
		"schedule": bson.M{
			"regularHours": bson.M{
				"MONDAY": bson.A{slotDoc(int32(9), int32(0), int32(17), int32(0))},
				"FRIDAY": bson.A{slotDoc(int64(8), int64(0), int64(12), int64(0)), slotDoc(13.0, 0.0, 16.0, 0.0)},
				"SUNDAY": bson.A{},
			},
			"exceptions": bson.A{
				bson.M{
					"timestamp": primitive.NewDateTimeFromTime(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)),
					"timeSlots": bson.A{},
					"type":      "OFF_TIME",
				},
			},
			"acceptedTimeSlots": bson.A{
				bson.M{"requestId": "req-1", "startTime": primitive.NewDateTimeFromTime(start), "duration": int32(30)},
			},
		},
	}

	p, err := c.decodeProvider(raw)
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	assert.Equal(t, "prov-1", p.ID)
	assert.Equal(t, "Ada Plumbing", p.Profile.ProviderName)
	assert.Equal(t, 4, p.ScheduleVersion)
	assert.Contains(t, p.Extra, "serviceCatalogue")
	assert.NotContains(t, p.Extra, "_id")

	monday, ok := p.Schedule.HoursFor(time.Monday)
	require.True(t, ok)
	assert.Equal(t, []models.TimeSlot{models.MustTimeSlot(9, 0, 17, 0)}, monday)
	friday, _ := p.Schedule.HoursFor(time.Friday)
	assert.Len(t, friday, 2)
	sunday, ok := p.Schedule.HoursFor(time.Sunday)
	assert.True(t, ok)
	assert.Empty(t, sunday)

	ex, ok := p.Schedule.ExceptionFor(models.NewDate(2024, 12, 25))
	require.True(t, ok)
	assert.Equal(t, models.OffTime, ex.Kind())

	a, ok := p.Schedule.AcceptedFor("req-1")
	require.True(t, ok)
	assert.True(t, a.StartTime().Equal(start))
	assert.Equal(t, 30, a.DurationMinutes())
}

func TestDecodeSchedule_SkipsMalformedEntries(t *testing.T) {
	c, logs := observedCodec()

	raw := bson.M{
		"regularHours": bson.M{
			"MONDAY":   bson.A{slotDoc(9, 0, 17, 0), slotDoc(17, 0, 9, 0), "nonsense"},
			"FUNDAY":   bson.A{slotDoc(9, 0, 17, 0)},
			"TUESDAY":  bson.A{bson.M{"startHour": 9}},
			"thursday": bson.A{slotDoc(10, 0, 11, 0)},
		},
		"exceptions": bson.A{
			bson.M{"timestamp": "2024-12-25", "timeSlots": bson.A{}, "type": "OFF_TIME"},
			bson.M{"timestamp": "not a date", "timeSlots": bson.A{}, "type": "OFF_TIME"},
			bson.M{"timestamp": "2024-12-26", "timeSlots": bson.A{}, "type": "HOLIDAY"},
			42,
		},
		"acceptedTimeSlots": bson.A{
			bson.M{"requestId": "ok", "startTime": time.Date(2024, 12, 28, 10, 0, 0, 0, time.UTC)},
			bson.M{"requestId": "", "startTime": time.Date(2024, 12, 28, 11, 0, 0, 0, time.UTC)},
			bson.M{"requestId": "no-start"},
			bson.M{"requestId": "bad-duration", "startTime": time.Date(2024, 12, 28, 12, 0, 0, 0, time.UTC), "duration": "long"},
		},
	}

	s := c.decodeSchedule(raw, c.logger)

	monday, _ := s.HoursFor(time.Monday)
	assert.Equal(t, []models.TimeSlot{models.MustTimeSlot(9, 0, 17, 0)}, monday)
	tuesday, ok := s.HoursFor(time.Tuesday)
	assert.True(t, ok)
	assert.Empty(t, tuesday)
	thursday, _ := s.HoursFor(time.Thursday)
	assert.Len(t, thursday, 1)
	assert.Len(t, s.RegularHours(), 3)

	require.Len(t, s.Exceptions(), 1)
	assert.Equal(t, models.NewDate(2024, 12, 25), s.Exceptions()[0].Date())

	require.Len(t, s.AcceptedTimeSlots(), 1)
	assert.Equal(t, models.DefaultBookingMinutes, s.AcceptedTimeSlots()[0].DurationMinutes())

	// 2 bad Monday slots, FUNDAY, the Tuesday slot, 3 exceptions, 3 accepted slots.
	assert.Equal(t, 10, logs.Len())
}

func TestDecodeSchedule_NotADocument(t *testing.T) {
	c, logs := observedCodec()

	s := c.decodeSchedule("corrupt", c.logger)
	assert.Empty(t, s.RegularHours())
	assert.Equal(t, 1, logs.Len())

	s = c.decodeSchedule(nil, c.logger)
	assert.Empty(t, s.Exceptions())
}

func TestEncodeDecode_PreservesSchedule(t *testing.T) {
	c, _ := observedCodec()

	ex, err := models.NewScheduleException(models.NewDate(2024, 12, 28), models.ExtraTime, []models.TimeSlot{models.MustTimeSlot(10, 0, 14, 0)})
	require.NoError(t, err)
	a, err := models.NewAcceptedTimeSlot("req-9", time.Date(2024, 12, 28, 10, 0, 0, 0, time.UTC), 45)
	require.NoError(t, err)

	p := models.NewProvider("prov-2", models.Profile{ProviderName: "Bo"}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p.Schedule = p.Schedule.
		WithRegularHours(time.Wednesday, []models.TimeSlot{models.MustTimeSlot(9, 0, 17, 0)}).
		WithException(ex).
		WithAcceptedTimeSlot(a)
	p.Extra = map[string]interface{}{"_id": "ignored", "devices": bson.A{"phone"}}

	doc := c.encodeProvider(p, 7)
	assert.NotContains(t, doc, "_id")
	assert.Equal(t, 7, doc["scheduleVersion"])

	// Round trip through BSON bytes like the driver would.
	b, err := bson.Marshal(doc)
	require.NoError(t, err)
	var raw bson.M
	require.NoError(t, bson.Unmarshal(b, &raw))

	back, err := c.decodeProvider(raw)
	require.NoError(t, err)
	assert.Equal(t, 7, back.ScheduleVersion)
	assert.Equal(t, "Bo", back.Profile.ProviderName)
	assert.Contains(t, back.Extra, "devices")

	date := models.NewDate(2024, 12, 28)
	assert.Equal(t, p.Schedule.AvailableSlots(date), back.Schedule.AvailableSlots(date))
	wed := models.NewDate(2024, 12, 25)
	assert.Equal(t, p.Schedule.AvailableSlots(wed), back.Schedule.AvailableSlots(wed))
	got, ok := back.Schedule.AcceptedFor("req-9")
	require.True(t, ok)
	assert.Equal(t, 45, got.DurationMinutes())
	assert.True(t, got.StartTime().Equal(a.StartTime()))
}
