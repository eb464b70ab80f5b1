package dto

type LocationRequest struct {
	State    string `json:"state" validate:"required,min=1,max=100"`
	District string `json:"district" validate:"required,min=1,max=100"`
}

type LocationResponse struct {
	State    string   `json:"state"`
	District string   `json:"district"`
	States   []string `json:"states,omitempty"`
}
