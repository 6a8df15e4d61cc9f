package amqp

import (
	"encoding/json"
	"time"
)

// NotificationEvent announces a portal notification that has not been seen
// before. Consumers decide how to surface it (SMS, mail, webhook).
type NotificationEvent struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewNotificationEvent(id int64, title, target string, createdAt time.Time) *NotificationEvent {
	return &NotificationEvent{
		ID:        id,
		Title:     title,
		Target:    target,
		CreatedAt: createdAt,
		Timestamp: time.Now(),
	}
}

func (m *NotificationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationEventFromJSON(data []byte) (*NotificationEvent, error) {
	var msg NotificationEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExportRequest asks the export worker to build a spreadsheet for a
// department over a date range. Dates use the 2006-01-02 layout; empty
// strings mean an unbounded range.
type ExportRequest struct {
	Department string    `json:"department"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	Format     string    `json:"format"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewExportRequest(department, startDate, endDate, format string) *ExportRequest {
	return &ExportRequest{
		Department: department,
		StartDate:  startDate,
		EndDate:    endDate,
		Format:     format,
		Timestamp:  time.Now(),
	}
}

func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
