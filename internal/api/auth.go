package api

import (
	"context"
	"net/http"

	"nextchamp/app/internal/domain"
)

// SignupRequest carries the profile-completion form. Height and weight
// stay strings on the wire, matching how the backend stores them.
type SignupRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"pwd"`
	DOB        string `json:"dob"`
	Height     string `json:"height"`
	Weight     string `json:"weight"`
	PhoneNo    string `json:"phoneno,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

type signupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userid"`
}

// SignupEmail registers a new account and returns the server-assigned
// user id.
func (c *Client) SignupEmail(ctx context.Context, req SignupRequest) (string, error) {
	var resp signupResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/email/signup", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		if resp.Message != "" {
			return "", &StatusError{StatusCode: http.StatusOK, Message: resp.Message}
		}
		return "", ErrServerFailure
	}
	return resp.UserID, nil
}

// SendOTP asks the backend to mail a one-time code to the address.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "/auth/email/signup/sendotp", body, nil)
}

// VerifyOTP checks a one-time code. Expired or mismatched codes surface
// as a *StatusError carrying the server's detail message.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	return c.doJSON(ctx, http.MethodPost, "/auth/email/verifyotp", body, nil)
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	domain.UserProfile
}

// LoginEmail authenticates with email and password and returns the
// signed-in user's profile.
func (c *Client) LoginEmail(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	body := map[string]string{"email": email, "pwd": password}
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/email/login", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Message != "" {
			return nil, &StatusError{StatusCode: http.StatusOK, Message: resp.Message}
		}
		return nil, ErrServerFailure
	}
	profile := resp.UserProfile
	return &profile, nil
}
