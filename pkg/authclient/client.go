package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const HeaderInternalToken = "X-Internal-Token"

var ErrUserNotFound = errors.New("user not found")

type Client struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

func NewClient(authServiceURL, internalToken string) *Client {
	return &Client{
		baseURL:       strings.TrimRight(authServiceURL, "/"),
		internalToken: internalToken,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (c *Client) LookupUser(ctx context.Context, id uint) (*User, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/internal/users/"+strconv.FormatUint(uint64(id), 10),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(HeaderInternalToken, c.internalToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("lookup failed with status: %d", resp.StatusCode)
	}

	var result User
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) UserExists(ctx context.Context, id uint) (bool, error) {
	_, err := c.LookupUser(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) UserEmail(ctx context.Context, id uint) (string, error) {
	u, err := c.LookupUser(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}
