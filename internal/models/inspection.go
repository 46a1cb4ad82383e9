package models

// InspectionRecord is a read-only cross-reference owned by the inspection
// module. Date and Time are kept as the separate fields they are captured in.
type InspectionRecord struct {
	ID           string `json:"id"`
	JobPackID    string `json:"job_pack_id"`
	StructureID  string `json:"structure_id"`
	Mode         Mode   `json:"mode"`
	DeploymentID string `json:"deployment_id"`
	TapeID       string `json:"tape_id,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Anomaly      bool   `json:"anomaly"`
	Description  string `json:"description,omitempty"`
}
