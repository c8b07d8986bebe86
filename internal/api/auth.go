package api

import (
	"context"
	"net/http"
)

// Login starts a phone login. The server answers by sending an OTP.
func (s AuthService) Login(ctx context.Context, phone, countryCode string) (*LoginResult, error) {
	result, err := sendBody[LoginResult](ctx, s.Client, Call{
		Endpoint: EndpointLogin,
		Method:   http.MethodPost,
		Params:   NewParams("phone", phone, "country_code", countryCode, "device_type", "2"),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyOTP completes the login and stores the returned bearer token.
func (s AuthService) VerifyOTP(ctx context.Context, phone, countryCode, otp string) (*AuthResult, error) {
	result, err := sendBody[AuthResult](ctx, s.Client, Call{
		Endpoint: EndpointVerifyOTP,
		Method:   http.MethodPost,
		Params:   NewParams("phone", phone, "country_code", countryCode, "otp", otp),
	})
	if err != nil {
		return nil, err
	}
	if result.Token != "" && s.Tokens != nil {
		s.Tokens.SetToken(result.Token)
	}
	return &result, nil
}

// ResendOTP asks the server for a new code.
func (s AuthService) ResendOTP(ctx context.Context, phone, countryCode string) error {
	return s.Do(ctx, Call{
		Endpoint: EndpointResendOTP,
		Method:   http.MethodPost,
		Params:   NewParams("phone", phone, "country_code", countryCode),
	}, nil)
}

// Logout invalidates the token server side.
func (s AuthService) Logout(ctx context.Context) error {
	return s.Do(ctx, Call{Endpoint: EndpointLogout, Method: http.MethodPut}, nil)
}

// DeleteAccount permanently removes the signed-in account.
func (s AuthService) DeleteAccount(ctx context.Context) error {
	return s.Do(ctx, Call{Endpoint: EndpointDeleteAccount, Method: http.MethodDelete}, nil)
}
