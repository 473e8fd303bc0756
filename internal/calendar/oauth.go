package calendar

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// OAuthSettings identify the Google OAuth web client.
type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// NewOAuthConfig builds the oauth2 config used for the calendar consent
// flow. Scopes cover event creation and free/busy reads.
func NewOAuthConfig(s OAuthSettings) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  s.RedirectURI,
		Scopes: []string{
			gcal.CalendarEventsScope,
			gcal.CalendarReadonlyScope,
		},
		Endpoint: google.Endpoint,
	}
}

// AuthCodeURL returns the consent URL. AccessTypeOffline requests a refresh
// token so the persisted credential outlives the first access token.
func AuthCodeURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}
