package domain

type PanelStatus string

const (
	PanelStatusSuccess PanelStatus = "success"
	PanelStatusPartial PanelStatus = "partial"
	PanelStatusError   PanelStatus = "error"
)

// Panel is one illustrated unit of a selection. A failed panel carries its
// own error message and an empty image.
type Panel struct {
	Number      int         `json:"panel_number"`
	SourceText  string      `json:"source_text"`
	PromptUsed  string      `json:"prompt_used,omitempty"`
	ImageBase64 string      `json:"image_base64"`
	Status      PanelStatus `json:"status"`
	Message     string      `json:"message,omitempty"`
}

type PanelBatch struct {
	Status       PanelStatus `json:"status"`
	Panels       []Panel     `json:"panels"`
	PanelCount   int         `json:"panel_count"`
	FailedPanels int         `json:"failed_panels"`
	Message      string      `json:"message,omitempty"`
}
