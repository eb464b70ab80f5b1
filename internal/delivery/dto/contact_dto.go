package dto

type ContactRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Subject      string `json:"subject" validate:"required,max=200"`
	Message      string `json:"message" validate:"required,min=10,max=5000"`
	CaptchaToken string `json:"captcha_token" validate:"omitempty"`
}

// ContactResponse carries the provider id of the admin notification
type ContactResponse struct {
	ID string `json:"id,omitempty"`
}
