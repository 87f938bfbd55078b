package model

// Profile is the authenticated user's persisted identity record. A
// Profile is either absent entirely or fully populated with
// IsAuthenticated set; there is no partially authenticated state.
type Profile struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	CountryCode     string `json:"country_code"`
	OTP             string `json:"otp"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// LoginRequest is the first step of the sign-in flow.
type LoginRequest struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

// LoginResponse carries the demo one-time code back to the caller for
// display. A real delivery channel is out of scope here.
type LoginResponse struct {
	OTPSent bool   `json:"otp_sent"`
	DemoOTP string `json:"demo_otp"`
}

// VerifyRequest is the second step of the sign-in flow.
type VerifyRequest struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	OTP         string `json:"otp"`
}

// VerifyResponse is returned on successful verification.
type VerifyResponse struct {
	Token   string   `json:"token"`
	Profile *Profile `json:"profile"`
}

// UpdateProfileRequest rewrites the mutable profile fields. Country
// code and session bookkeeping are preserved.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
