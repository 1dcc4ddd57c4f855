package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/harrisonrobin/arrange/pkg/auth"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewClient creates a Calendar client that authenticates each request with a
// token from tokens. Extra options are passed to calendar.NewService.
func NewClient(ctx context.Context, tokens auth.TokenSupplier, opts ...option.ClientOption) (*CalendarClient, error) {
	opts = append([]option.ClientOption{
		option.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}
	return NewCalendarClient(srv, tokens), nil
}

// ResolveCalendar returns the ID of the calendar whose summary is name.
func (c *CalendarClient) ResolveCalendar(ctx context.Context, name string) (string, error) {
	call := c.srv.CalendarList.List()
	if err := c.authorize(ctx, call); err != nil {
		return "", err
	}

	var calendarID string
	err := call.Pages(ctx, func(list *calendar.CalendarList) error {
		for _, item := range list.Items {
			if item.Summary == name && calendarID == "" {
				calendarID = item.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	if calendarID == "" {
		return "", fmt.Errorf("calendar '%s' not found", name)
	}
	return calendarID, nil
}

// CreateCalendar creates a secondary calendar and returns its ID.
func (c *CalendarClient) CreateCalendar(ctx context.Context, name string) (string, error) {
	call := c.srv.Calendars.Insert(&calendar.Calendar{Summary: name}).Context(ctx)
	if err := c.authorize(ctx, call); err != nil {
		return "", err
	}
	created, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("unable to create calendar '%s': %w", name, err)
	}
	return created.Id, nil
}
