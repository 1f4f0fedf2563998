package model

import "time"

type Reflection struct {
	Wins      string `json:"wins,omitempty"`
	Lessons   string `json:"lessons,omitempty"`
	Gratitude string `json:"gratitude,omitempty"`
	Mood      string `json:"mood,omitempty"`
}

type Priority struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type SleepPlan struct {
	Bedtime     string  `json:"bedtime,omitempty"`
	WakeTime    string  `json:"wake_time,omitempty"`
	TargetHours float64 `json:"target_hours,omitempty"`
}

// NightlyPlan is unique per Date (YYYY-MM-DD).
type NightlyPlan struct {
	Date       string     `json:"date"`
	Reflection Reflection `json:"reflection"`
	Priorities []Priority `json:"priorities"`
	SleepPlan  SleepPlan  `json:"sleep_plan"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
