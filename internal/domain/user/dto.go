package user

import "time"

// UserResponse represents user data in API responses
type UserResponse struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	NationalID     *string `json:"national_id,omitempty"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	CompanyID      *string `json:"company_id,omitempty"`
	CompanyName    *string `json:"company_name,omitempty"`
	JobTitle       *string `json:"job_title,omitempty"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	Status         string  `json:"status"`
	AttachmentPath *string `json:"attachment_path,omitempty"`
	IsSuspended    bool    `json:"is_suspended"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		FullName:       u.FullName,
		NationalID:     u.NationalID,
		Email:          u.Email,
		Role:           u.Role,
		CompanyID:      u.CompanyID,
		CompanyName:    u.CompanyName,
		JobTitle:       u.JobTitle,
		PhoneNumber:    u.PhoneNumber,
		Status:         u.Status,
		AttachmentPath: u.AttachmentPath,
		IsSuspended:    u.IsSuspended,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      u.UpdatedAt.Format(time.RFC3339),
	}
}
