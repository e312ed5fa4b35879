package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskStormDiscover = "storms.discover"

const TaskStormPromoteLeads = "storms.promote_leads"

// StormPipelinePayload is shared by both pipeline tasks; the worker applies
// the configured radius/threshold defaults.
type StormPipelinePayload struct {
	StormEventID string `json:"stormEventId"`
}

func NewStormDiscoverTask(payload StormPipelinePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStormDiscover, data), nil
}

func NewStormPromoteLeadsTask(payload StormPipelinePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStormPromoteLeads, data), nil
}

func ParseStormPipelinePayload(task *asynq.Task) (StormPipelinePayload, error) {
	var payload StormPipelinePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return StormPipelinePayload{}, err
	}
	return payload, nil
}
