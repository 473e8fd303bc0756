package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// EventRequest describes a calendar event to create.
type EventRequest struct {
	Start         time.Time
	End           time.Time
	AttendeeEmail string
	Summary       string
	Description   string
}

// EventResult is the backend's record of a created event.
type EventResult struct {
	EventID string
	Link    string
}

// Backend is the external calendar a Scheduler delegates to. The Google
// implementation is the only production one; tests substitute fakes.
type Backend interface {
	// BusyIntervals fetches the busy ranges between from and to. The fetch
	// is a single synchronous call; results are never cached.
	BusyIntervals(ctx context.Context, from, to time.Time) ([]Interval, error)
	// CreateEvent inserts an event and invites the attendee. The attendee
	// notification email is a side effect of this call.
	CreateEvent(ctx context.Context, req EventRequest) (*EventResult, error)
	// CancelEvent deletes an event, notifying attendees.
	CancelEvent(ctx context.Context, eventID string) error
}

// GoogleClient implements Backend against the Google Calendar API.
type GoogleClient struct {
	svc        *gcal.Service
	calendarID string
	logger     *logging.Logger
}

// NewGoogleClient builds a calendar client from an authorized token.
func NewGoogleClient(ctx context.Context, oauthCfg *oauth2.Config, token *oauth2.Token, logger *logging.Logger) (*GoogleClient, error) {
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := oauthCfg.Client(ctx, token)
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to create calendar service: %w", err)
	}
	return &GoogleClient{
		svc:        svc,
		calendarID: "primary",
		logger:     logger,
	}, nil
}

// BusyIntervals queries free/busy for the primary calendar.
func (c *GoogleClient) BusyIntervals(ctx context.Context, from, to time.Time) ([]Interval, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	resp, err := c.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: free/busy query failed: %w", err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, nil
	}

	busy := make([]Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("calendar: bad busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("calendar: bad busy end %q: %w", period.End, err)
		}
		busy = append(busy, Interval{Start: start, End: end})
	}
	return busy, nil
}

// CreateEvent inserts an event on the primary calendar with sendUpdates=all
// so Google emails the attendee.
func (c *GoogleClient) CreateEvent(ctx context.Context, req EventRequest) (*EventResult, error) {
	event := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &gcal.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Attendees: []*gcal.EventAttendee{
			{Email: req.AttendeeEmail},
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      true,
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: event insert failed: %w", err)
	}

	c.logger.Info("calendar event created", "event_id", created.Id, "link", created.HtmlLink)
	return &EventResult{EventID: created.Id, Link: created.HtmlLink}, nil
}

// CancelEvent deletes an event from the primary calendar, notifying attendees.
func (c *GoogleClient) CancelEvent(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(c.calendarID, eventID).SendUpdates("all").Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: event delete failed: %w", err)
	}
	c.logger.Info("calendar event cancelled", "event_id", eventID)
	return nil
}
