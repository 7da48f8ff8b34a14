package auth

import "testing"

// TestValidateSignUp covers the signup rules in order: username length,
// email shape, password length, confirm match. First failure wins.
func TestValidateSignUp(t *testing.T) {
	valid := Form{
		Username:        "wanjiku",
		Email:           "wanjiku@farm.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}

	tests := []struct {
		name      string
		mutate    func(*Form)
		wantField string
		wantMsg   string
	}{
		{
			name:   "valid form",
			mutate: func(f *Form) {},
		},
		{
			name:      "username too short",
			mutate:    func(f *Form) { f.Username = "ab" },
			wantField: "username",
			wantMsg:   "Username too short",
		},
		{
			name:      "empty email",
			mutate:    func(f *Form) { f.Email = "" },
			wantField: "email",
			wantMsg:   "Email cannot be empty",
		},
		{
			name:      "email missing at sign",
			mutate:    func(f *Form) { f.Email = "wanjiku.farm.com" },
			wantField: "email",
			wantMsg:   "Invalid email",
		},
		{
			name:      "email missing dot com",
			mutate:    func(f *Form) { f.Email = "wanjiku@farm.org" },
			wantField: "email",
			wantMsg:   "Invalid email",
		},
		{
			name:      "password too short",
			mutate:    func(f *Form) { f.Password, f.ConfirmPassword = "abc", "abc" },
			wantField: "password",
			wantMsg:   "Password too short",
		},
		{
			name:      "confirm mismatch",
			mutate:    func(f *Form) { f.ConfirmPassword = "secret2" },
			wantField: "confirmPassword",
			wantMsg:   "Password and confirmPassword does NOT match",
		},
		{
			name: "username failure reported before email failure",
			mutate: func(f *Form) {
				f.Username = "ab"
				f.Email = "not-an-email"
			},
			wantField: "username",
			wantMsg:   "Username too short",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := valid
			tc.mutate(&form)

			verr := validateSignUp(form)
			if tc.wantField == "" {
				if verr != nil {
					t.Fatalf("validateSignUp() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("validateSignUp() = nil, want error")
			}
			if verr.Field != tc.wantField || verr.Message != tc.wantMsg {
				t.Errorf("validateSignUp() = {%q, %q}, want {%q, %q}",
					verr.Field, verr.Message, tc.wantField, tc.wantMsg)
			}
		})
	}
}

// TestValidateLogin verifies login only checks email and password.
func TestValidateLogin(t *testing.T) {
	// Username and confirm are irrelevant to login.
	form := Form{Email: "bob@x.com", Password: "secret1"}
	if verr := validateLogin(form); verr != nil {
		t.Errorf("validateLogin() = %v, want nil", verr)
	}

	form.Password = "abc"
	verr := validateLogin(form)
	if verr == nil || verr.Field != "password" {
		t.Errorf("validateLogin() = %v, want password error", verr)
	}
}

// TestValidateResetPassword verifies the OTP length rule and its position
// after the password checks.
func TestValidateResetPassword(t *testing.T) {
	form := Form{
		Email:           "bob@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		OTP:             "123456",
	}
	if verr := validateResetPassword(form); verr != nil {
		t.Fatalf("validateResetPassword() = %v, want nil", verr)
	}

	form.OTP = "123"
	verr := validateResetPassword(form)
	if verr == nil || verr.Field != "otp" || verr.Message != "OTP too short" {
		t.Errorf("validateResetPassword() = %v, want otp error", verr)
	}

	// Confirm mismatch is reported before the OTP failure.
	form.ConfirmPassword = "other12"
	verr = validateResetPassword(form)
	if verr == nil || verr.Field != "confirmPassword" {
		t.Errorf("validateResetPassword() = %v, want confirmPassword error", verr)
	}
}

// TestValidateForgotPassword verifies only the email is checked.
func TestValidateForgotPassword(t *testing.T) {
	if verr := validateForgotPassword(Form{Email: "bob@x.com"}); verr != nil {
		t.Errorf("validateForgotPassword() = %v, want nil", verr)
	}
	verr := validateForgotPassword(Form{})
	if verr == nil || verr.Field != "email" || verr.Message != "Email cannot be empty" {
		t.Errorf("validateForgotPassword() = %v, want empty-email error", verr)
	}
}
