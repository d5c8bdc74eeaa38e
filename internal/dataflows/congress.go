package dataflows

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/CortexBrief/consts"
)

const congressBaseURL = "https://api.congress.gov/v3"

// CongressClient handles api.congress.gov v3 requests
type CongressClient struct {
	apiKey string
	client *resty.Client
}

// NewCongressClient creates a new Congress.gov client
func NewCongressClient(apiKey string, opts ClientOptions) *CongressClient {
	return &CongressClient{
		apiKey: apiKey,
		client: newRestyClient(opts.baseURL(congressBaseURL), opts),
	}
}

func (c *CongressClient) request(ctx context.Context, limit int, sort string) (*resty.Request, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("congress: %w", consts.ErrMissingCredential)
	}
	params := map[string]string{
		"api_key": c.apiKey,
		"limit":   strconv.Itoa(limit),
		"format":  "json",
	}
	if sort != "" {
		params["sort"] = sort
	}
	return c.client.R().SetContext(ctx).SetQueryParams(params), nil
}

// CommitteeMeetings returns the most recent committee meetings. A payload
// without the committeeMeetings key yields ErrNoMatchingRecords.
func (c *CongressClient) CommitteeMeetings(ctx context.Context, limit int) ([]CommitteeMeeting, error) {
	req, err := c.request(ctx, limit, "")
	if err != nil {
		return nil, err
	}
	var payload struct {
		CommitteeMeetings *[]CommitteeMeeting `json:"committeeMeetings"`
	}
	if err := getJSON(req, "/committee-meeting", &payload); err != nil {
		return nil, fmt.Errorf("committee meetings: %w", err)
	}
	if payload.CommitteeMeetings == nil {
		return nil, fmt.Errorf("committee meetings: %w", consts.ErrNoMatchingRecords)
	}
	return *payload.CommitteeMeetings, nil
}

// Nominations returns recent nominations sorted by received date.
func (c *CongressClient) Nominations(ctx context.Context, limit int) ([]Nomination, error) {
	req, err := c.request(ctx, limit, "receivedDate")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Nominations *[]Nomination `json:"nominations"`
	}
	if err := getJSON(req, "/nomination", &payload); err != nil {
		return nil, fmt.Errorf("nominations: %w", err)
	}
	if payload.Nominations == nil {
		return nil, fmt.Errorf("nominations: %w", consts.ErrNoMatchingRecords)
	}
	return *payload.Nominations, nil
}

// Bills returns bills sorted by latest action.
func (c *CongressClient) Bills(ctx context.Context, limit int) ([]Bill, error) {
	req, err := c.request(ctx, limit, "latestAction")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Bills *[]Bill `json:"bills"`
	}
	if err := getJSON(req, "/bill", &payload); err != nil {
		return nil, fmt.Errorf("bills: %w", err)
	}
	if payload.Bills == nil {
		return nil, fmt.Errorf("bills: %w", consts.ErrNoMatchingRecords)
	}
	return *payload.Bills, nil
}
