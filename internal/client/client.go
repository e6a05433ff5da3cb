// Package client calls a remote recall server over the Connect protocol with plain JSON.
package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-resty/resty/v2"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/proto"

	apiv1 "github.com/at-ishikawa/recall/internal/api/v1"
	"github.com/at-ishikawa/recall/internal/review"
)

const badRequestType = "google.rpc.BadRequest"

type Client struct {
	httpClient *resty.Client
}

// NewClient creates a client for the server at baseURL.
// Listing reviews is retried up to retryCount times when the server is unavailable; grading is never retried.
func NewClient(baseURL string, retryCount int) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Connect-Protocol-Version", "1").
		SetTimeout(30 * time.Second).
		SetRetryCount(retryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			if res == nil || res.Request == nil || !strings.HasSuffix(res.Request.URL, apiv1.ReviewServiceListDueReviewsProcedure) {
				return false
			}
			return err != nil || res.StatusCode() == http.StatusServiceUnavailable
		})

	return &Client{httpClient: httpClient}
}

// wireError is the Connect protocol's JSON error body.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"details"`
}

func (c *Client) ListDueReviews(ctx context.Context, now *time.Time) (*apiv1.ListDueReviewsResponse, error) {
	var result apiv1.ListDueReviewsResponse
	if err := c.call(ctx, apiv1.ReviewServiceListDueReviewsProcedure, &apiv1.ListDueReviewsRequest{Now: now}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GradeReview(ctx context.Context, itemID string, quality review.Quality) (*apiv1.Review, error) {
	q := int(quality)
	var result apiv1.GradeReviewResponse
	if err := c.call(ctx, apiv1.ReviewServiceGradeReviewProcedure, &apiv1.GradeReviewRequest{ItemID: itemID, Quality: &q}, &result); err != nil {
		return nil, err
	}
	if result.Review == nil {
		return nil, fmt.Errorf("%s: empty review in response", apiv1.ReviewServiceGradeReviewProcedure)
	}
	return result.Review, nil
}

func (c *Client) call(ctx context.Context, procedure string, request, result any) error {
	var errBody wireError
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(result).
		SetError(&errBody).
		Post(procedure)
	if err != nil {
		return fmt.Errorf("client.R.Post(%s) > %w", procedure, err)
	}
	if !res.IsError() {
		return nil
	}
	if errBody.Code == "" {
		return connect.NewError(codeFromHTTPStatus(res.StatusCode()), fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body())))
	}
	return errBody.toConnectError()
}

func (e wireError) toConnectError() *connect.Error {
	var code connect.Code
	if err := code.UnmarshalText([]byte(e.Code)); err != nil {
		code = connect.CodeUnknown
	}
	connectErr := connect.NewError(code, errors.New(e.Message))

	for _, d := range e.Details {
		if d.Type != badRequestType {
			continue
		}
		value, err := decodeDetailValue(d.Value)
		if err != nil {
			continue
		}
		var badRequest errdetails.BadRequest
		if err := proto.Unmarshal(value, &badRequest); err != nil {
			continue
		}
		if detail, err := connect.NewErrorDetail(&badRequest); err == nil {
			connectErr.AddDetail(detail)
		}
	}
	return connectErr
}

// decodeDetailValue accepts both padded and unpadded base64.
func decodeDetailValue(value string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(value, "="))
}

func codeFromHTTPStatus(status int) connect.Code {
	switch status {
	case http.StatusBadRequest:
		return connect.CodeInvalidArgument
	case http.StatusNotFound:
		return connect.CodeNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return connect.CodeUnavailable
	default:
		return connect.CodeUnknown
	}
}

// FieldViolations returns the invalid request fields carried by err, keyed by field name.
func FieldViolations(err error) map[string]string {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return nil
	}
	violations := make(map[string]string)
	for _, detail := range connectErr.Details() {
		value, err := detail.Value()
		if err != nil {
			continue
		}
		badRequest, ok := value.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range badRequest.GetFieldViolations() {
			violations[v.GetField()] = v.GetDescription()
		}
	}
	return violations
}
