package providerRepo

import (
	"fmt"
	"time"

	"solvit/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Field names of the persisted provider document.
const (
	fieldID              = "id"
	fieldProfile         = "profile"
	fieldSchedule        = "schedule"
	fieldScheduleVersion = "scheduleVersion"
	fieldCreatedAt       = "createdAt"
	fieldUpdatedAt       = "updatedAt"

	fieldRegularHours = "regularHours"
	fieldExceptions   = "exceptions"
	fieldAccepted     = "acceptedTimeSlots"
)

// codec converts provider documents to and from models. Decoding never fails
// on a malformed schedule entry: the entry is logged and skipped.
type codec struct {
	logger *zap.Logger
	loc    *time.Location
}

func newCodec(logger *zap.Logger, loc *time.Location) codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return codec{logger: logger, loc: loc}
}

func (c codec) encodeProvider(p *models.Provider, version int) bson.M {
	doc := bson.M{}
	for k, v := range p.Extra {
		doc[k] = v
	}
	doc[fieldID] = p.ID
	doc[fieldProfile] = p.Profile
	doc[fieldSchedule] = c.encodeSchedule(p.Schedule)
	doc[fieldScheduleVersion] = version
	doc[fieldCreatedAt] = p.CreatedAt
	doc[fieldUpdatedAt] = p.UpdatedAt
	delete(doc, "_id")
	return doc
}

func (c codec) encodeSchedule(s models.Schedule) bson.M {
	regular := bson.M{}
	for day, slots := range s.RegularHours() {
		regular[models.DayName(day)] = encodeSlots(slots)
	}

	exceptions := bson.A{}
	for _, ex := range s.Exceptions() {
		d := ex.Date()
		exceptions = append(exceptions, bson.M{
			"timestamp": time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC),
			"timeSlots": encodeSlots(ex.TimeSlots()),
			"type":      string(ex.Kind()),
		})
	}

	accepted := bson.A{}
	for _, a := range s.AcceptedTimeSlots() {
		accepted = append(accepted, bson.M{
			"requestId": a.RequestID(),
			"startTime": a.StartTime(),
			"duration":  a.DurationMinutes(),
		})
	}

	return bson.M{
		fieldRegularHours: regular,
		fieldExceptions:   exceptions,
		fieldAccepted:     accepted,
	}
}

func encodeSlots(slots []models.TimeSlot) bson.A {
	out := bson.A{}
	for _, ts := range slots {
		out = append(out, bson.M{
			"startHour":   ts.StartHour(),
			"startMinute": ts.StartMinute(),
			"endHour":     ts.EndHour(),
			"endMinute":   ts.EndMinute(),
		})
	}
	return out
}

func (c codec) decodeProvider(raw bson.M) (*models.Provider, error) {
	id, ok := raw[fieldID].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("provider document has no id")
	}
	log := c.logger.With(zap.String("providerID", id))

	p := &models.Provider{ID: id, Extra: map[string]interface{}{}}

	if rawProfile, ok := raw[fieldProfile]; ok && rawProfile != nil {
		if err := decodeInto(rawProfile, &p.Profile); err != nil {
			log.Warn("Skipping malformed provider profile", zap.Error(err))
		}
	}
	p.Schedule = c.decodeSchedule(raw[fieldSchedule], log)
	if v, ok := asInt(raw[fieldScheduleVersion]); ok {
		p.ScheduleVersion = v
	}
	if t, ok := asTime(raw[fieldCreatedAt]); ok {
		p.CreatedAt = t.In(c.loc)
	}
	if t, ok := asTime(raw[fieldUpdatedAt]); ok {
		p.UpdatedAt = t.In(c.loc)
	}

	for k, v := range raw {
		switch k {
		case "_id", fieldID, fieldProfile, fieldSchedule, fieldScheduleVersion, fieldCreatedAt, fieldUpdatedAt:
			continue
		}
		p.Extra[k] = v
	}
	return p, nil
}

// decodeSchedule rebuilds a Schedule from a loosely typed value. Anything that
// cannot be understood is logged and dropped; the rest still loads.
func (c codec) decodeSchedule(raw interface{}, log *zap.Logger) models.Schedule {
	if raw == nil {
		return models.EmptySchedule()
	}
	doc, ok := asDocument(raw)
	if !ok {
		log.Warn("Schedule is not a document; loading an empty schedule", zap.String("type", fmt.Sprintf("%T", raw)))
		return models.EmptySchedule()
	}

	regular := map[time.Weekday][]models.TimeSlot{}
	if rawRegular, ok := doc[fieldRegularHours]; ok && rawRegular != nil {
		days, ok := asDocument(rawRegular)
		if !ok {
			log.Warn("Skipping malformed regularHours", zap.String("type", fmt.Sprintf("%T", rawRegular)))
		}
		for name, rawSlots := range days {
			day, err := models.ParseDay(name)
			if err != nil {
				log.Warn("Skipping unknown day in regularHours", zap.String("day", name))
				continue
			}
			regular[day] = c.decodeSlots(rawSlots, log.With(zap.String("day", name)))
		}
	}

	var exceptions []models.ScheduleException
	for i, item := range c.decodeList(doc[fieldExceptions], fieldExceptions, log) {
		ex, err := c.decodeException(item, log)
		if err != nil {
			log.Warn("Skipping malformed schedule exception", zap.Int("index", i), zap.Error(err))
			continue
		}
		exceptions = append(exceptions, ex)
	}

	var accepted []models.AcceptedTimeSlot
	for i, item := range c.decodeList(doc[fieldAccepted], fieldAccepted, log) {
		a, err := c.decodeAccepted(item)
		if err != nil {
			log.Warn("Skipping malformed accepted time slot", zap.Int("index", i), zap.Error(err))
			continue
		}
		accepted = append(accepted, a)
	}

	return models.NewSchedule(regular, exceptions, accepted)
}

func (c codec) decodeList(raw interface{}, field string, log *zap.Logger) []interface{} {
	if raw == nil {
		return nil
	}
	items, ok := asArray(raw)
	if !ok {
		log.Warn("Skipping malformed schedule list", zap.String("field", field), zap.String("type", fmt.Sprintf("%T", raw)))
		return nil
	}
	return items
}

func (c codec) decodeSlots(raw interface{}, log *zap.Logger) []models.TimeSlot {
	items, ok := asArray(raw)
	if !ok {
		if raw != nil {
			log.Warn("Skipping malformed slot list", zap.String("type", fmt.Sprintf("%T", raw)))
		}
		return []models.TimeSlot{}
	}
	slots := make([]models.TimeSlot, 0, len(items))
	for i, item := range items {
		ts, err := decodeSlot(item)
		if err != nil {
			log.Warn("Skipping malformed time slot", zap.Int("index", i), zap.Error(err))
			continue
		}
		slots = append(slots, ts)
	}
	return slots
}

func decodeSlot(raw interface{}) (models.TimeSlot, error) {
	doc, ok := asDocument(raw)
	if !ok {
		return models.TimeSlot{}, fmt.Errorf("time slot is %T, not a document", raw)
	}
	var fields [4]int
	for i, key := range []string{"startHour", "startMinute", "endHour", "endMinute"} {
		v, ok := asInt(doc[key])
		if !ok {
			return models.TimeSlot{}, fmt.Errorf("time slot field %s is missing or not an integer", key)
		}
		fields[i] = v
	}
	return models.NewTimeSlot(fields[0], fields[1], fields[2], fields[3])
}

func (c codec) decodeException(raw interface{}, log *zap.Logger) (models.ScheduleException, error) {
	doc, ok := asDocument(raw)
	if !ok {
		return models.ScheduleException{}, fmt.Errorf("exception is %T, not a document", raw)
	}
	date, ok := asDate(doc["timestamp"])
	if !ok {
		return models.ScheduleException{}, fmt.Errorf("exception timestamp is missing or malformed")
	}
	rawKind, _ := doc["type"].(string)
	kind, err := models.ParseExceptionKind(rawKind)
	if err != nil {
		return models.ScheduleException{}, err
	}
	slots := c.decodeSlots(doc["timeSlots"], log.With(zap.String("exception", date.String())))
	return models.NewScheduleException(date, kind, slots)
}

func (c codec) decodeAccepted(raw interface{}) (models.AcceptedTimeSlot, error) {
	doc, ok := asDocument(raw)
	if !ok {
		return models.AcceptedTimeSlot{}, fmt.Errorf("accepted time slot is %T, not a document", raw)
	}
	requestID, _ := doc["requestId"].(string)
	start, ok := asTime(doc["startTime"])
	if !ok {
		return models.AcceptedTimeSlot{}, fmt.Errorf("accepted time slot %q has no valid startTime", requestID)
	}
	duration := 0
	if rawDuration, present := doc["duration"]; present && rawDuration != nil {
		if duration, ok = asInt(rawDuration); !ok {
			return models.AcceptedTimeSlot{}, fmt.Errorf("accepted time slot %q has a non-integer duration", requestID)
		}
	}
	return models.NewAcceptedTimeSlot(requestID, start.In(c.loc), duration)
}

func decodeInto(raw interface{}, out interface{}) error {
	b, err := bson.Marshal(raw)
	if err != nil {
		return err
	}
	return bson.Unmarshal(b, out)
}

func asDocument(v interface{}) (map[string]interface{}, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]interface{}:
		return d, true
	case bson.D:
		return d.Map(), true
	}
	return nil, false
}

func asArray(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []interface{}:
		return a, true
	}
	return nil, false
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case primitive.DateTime:
		return t.Time(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0), true
	case int64:
		return time.UnixMilli(t), true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

// asDate reads an exception timestamp. Stored timestamps are midnight UTC of
// the date; "YYYY-MM-DD" strings are accepted too.
func asDate(v interface{}) (models.Date, bool) {
	if s, ok := v.(string); ok {
		if d, err := models.ParseDate(s); err == nil {
			return d, true
		}
	}
	t, ok := asTime(v)
	if !ok {
		return models.Date{}, false
	}
	return models.DateOf(t.UTC()), true
}
