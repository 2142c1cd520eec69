package service

import (
	"time"

	"github.com/google/uuid"

	"planbench/internal/model"
)

type EventType string

const (
	EventRunStarted         EventType = "run_started"
	EventExperimentStarted  EventType = "experiment_started"
	EventProgress           EventType = "progress"
	EventExperimentFinished EventType = "experiment_finished"
	EventRunFinished        EventType = "run_finished"
)

// Event 执行过程中推送给订阅方（WebSocket）的事件
type Event struct {
	ID       string                  `json:"id"`
	Type     EventType               `json:"type"`
	Time     time.Time               `json:"time"`
	RunUUID  string                  `json:"run_uuid,omitempty"`
	Key      *model.ExperimentKey    `json:"key,omitempty"`
	Outcome  Outcome                 `json:"outcome,omitempty"`
	Elapsed  float64                 `json:"elapsed,omitempty"`
	Progress *model.ProgressSnapshot `json:"progress,omitempty"`
	Summary  *model.RunSummary       `json:"summary,omitempty"`
	Message  string                  `json:"message,omitempty"`
}

func newEvent(t EventType) Event {
	return Event{ID: uuid.NewString(), Type: t, Time: time.Now()}
}
