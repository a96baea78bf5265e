package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nextchamp/app/internal/api"
	"nextchamp/app/internal/domain"
)

var (
	ErrPasswordMismatch = errors.New("password and confirmation do not match")
	ErrOTPNotRequested  = errors.New("no verification code has been requested yet")
)

// AuthBackend is the slice of the API client the wizard needs.
type AuthBackend interface {
	SignupEmail(ctx context.Context, req api.SignupRequest) (string, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	LoginEmail(ctx context.Context, email, password string) (*domain.UserProfile, error)
}

// ProfileForm is the profile-completion input. All fields are collected
// as entered; validation happens in one place before anything leaves the
// device.
type ProfileForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	DOB             string // e.g. "2006-01-02"
	Height          string // cm
	Weight          string // kg
	PhoneNo         string
	ProfilePic      string
}

// Validate checks the strict registration variant: every identity and
// anthropometric field must be present and the password confirmed. It
// reports all missing fields at once so the user fixes the form in one
// pass.
func (f ProfileForm) Validate() error {
	var missing []string
	for _, field := range []struct {
		name, value string
	}{
		{"username", f.Username},
		{"email", f.Email},
		{"password", f.Password},
		{"date of birth", f.DOB},
		{"height", f.Height},
		{"weight", f.Weight},
		{"phone number", f.PhoneNo},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if f.Password != f.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// ProfileWizard drives profile completion: validate the form, mail an
// OTP, then register once the code checks out. Like the upload screen it
// is single-flight and recoverable; a failed step leaves the entered form
// intact for retry.
type ProfileWizard struct {
	auth AuthBackend

	form     ProfileForm
	otpSent  bool
	verified bool
}

func NewProfileWizard(auth AuthBackend) *ProfileWizard {
	return &ProfileWizard{auth: auth}
}

// Start validates the form and requests a verification code for the
// entered address. Validation errors block before any network call.
func (w *ProfileWizard) Start(ctx context.Context, form ProfileForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if err := w.auth.SendOTP(ctx, form.Email); err != nil {
		return err
	}
	w.form = form
	w.otpSent = true
	w.verified = false
	return nil
}

// Confirm verifies the mailed code and completes registration, returning
// the server-assigned user id. An invalid or expired code surfaces the
// server's message and leaves the wizard ready for another attempt.
func (w *ProfileWizard) Confirm(ctx context.Context, otp string) (string, error) {
	if !w.otpSent {
		return "", ErrOTPNotRequested
	}
	if err := w.auth.VerifyOTP(ctx, w.form.Email, otp); err != nil {
		return "", err
	}
	w.verified = true

	userID, err := w.auth.SignupEmail(ctx, api.SignupRequest{
		Username:   w.form.Username,
		Email:      w.form.Email,
		Password:   w.form.Password,
		DOB:        w.form.DOB,
		Height:     w.form.Height,
		Weight:     w.form.Weight,
		PhoneNo:    w.form.PhoneNo,
		ProfilePic: w.form.ProfilePic,
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Verified reports whether the OTP step has succeeded.
func (w *ProfileWizard) Verified() bool {
	return w.verified
}
