package transport

// TaskRequest is the payload for creating or fully replacing a task.
// DueDate is RFC3339; an empty string means the task has no due date.
type TaskRequest struct {
	Title              string `json:"title"`
	Notes              string `json:"notes"`
	IsCompleted        bool   `json:"is_completed"`
	Priority           string `json:"priority"`
	DueDate            string `json:"due_date"`
	HasTime            bool   `json:"has_time"`
	HasAlarm           bool   `json:"has_alarm"`
	AlarmOffsetMinutes int    `json:"alarm_offset_minutes"`
}

// DeviceAuthRequest registers a device and opens a session for it.
// TTLSeconds is optional; zero means the server default applies.
type DeviceAuthRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// RefreshRequest extends an existing device session.
type RefreshRequest struct {
	SessionID  string `json:"session_id"`
	TTLSeconds int    `json:"ttl_seconds"`
}
