package models

import "time"

// MovementEvent records one movement of a deployment (launch, arrival at the
// worksite, recovery, ...). The code comes from the deployment's vocabulary.
type MovementEvent struct {
	ID           string    `json:"id"`
	DeploymentID string    `json:"deployment_id"`
	Time         time.Time `json:"time"`
	Code         string    `json:"code"`
	Remark       string    `json:"remark,omitempty"`
}
