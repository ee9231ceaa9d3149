package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRescoreAll = "scoring.rescore_all"

const TaskBulkAssign = "assignment.bulk"

type RescoreAllPayload struct {
	OrganizationID string `json:"organizationId"`
}

type BulkAssignPayload struct {
	OrganizationID string   `json:"organizationId"`
	LeadIDs        []string `json:"leadIds"`
}

func NewRescoreAllTask(payload RescoreAllPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRescoreAll, data), nil
}

func ParseRescoreAllPayload(task *asynq.Task) (RescoreAllPayload, error) {
	var payload RescoreAllPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RescoreAllPayload{}, err
	}
	return payload, nil
}

func NewBulkAssignTask(payload BulkAssignPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBulkAssign, data), nil
}

func ParseBulkAssignPayload(task *asynq.Task) (BulkAssignPayload, error) {
	var payload BulkAssignPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BulkAssignPayload{}, err
	}
	return payload, nil
}
