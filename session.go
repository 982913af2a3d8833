package carebridge

import (
	"context"
	"io"
	"net/http"
	"time"
)

// UserType distinguishes the audiences of the platform.
type UserType string

const (
	UserTypePatient   UserType = "patient"
	UserTypeCaregiver UserType = "caregiver"
	UserTypeAdmin     UserType = "admin"
)

// Session is the per-user authentication state the web tier stores in an
// encrypted cookie. The SDK never persists it; it is supplied by a
// SessionSource and re-read for every outgoing request.
type Session struct {
	AccessToken string
	IsLoggedIn  bool
	IsBoarded   bool
	UserType    UserType
	UserID      string
	Email       string
	FirstName   string
	LastName    string
}

// SessionSource yields the session for the request currently being
// served. Implementations must not memoize across requests: in a process
// serving many users concurrently, the session has to be rehydrated from
// the incoming request every time.
type SessionSource interface {
	Session(ctx context.Context) (Session, error)
}

// SessionSourceFunc adapts a function to the SessionSource interface.
type SessionSourceFunc func(ctx context.Context) (Session, error)

// Session implements SessionSource.
func (f SessionSourceFunc) Session(ctx context.Context) (Session, error) {
	return f(ctx)
}

// StaticSession returns a source that always yields the same session.
// Intended for single-user processes such as CLI tools.
func StaticSession(s Session) SessionSource {
	return SessionSourceFunc(func(context.Context) (Session, error) {
		return s, nil
	})
}

func (c *Client) startKeepAlive() {
	if c.keepAliveInterval <= 0 {
		return
	}

	c.keepAliveOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		c.keepAliveCancel = cancel
		c.keepAliveWG.Add(1)
		go func() {
			defer c.keepAliveWG.Done()
			c.runKeepAlive(ctx)
		}()
	})
}

func (c *Client) stopKeepAlive() {
	cancel := c.keepAliveCancel
	if cancel == nil {
		return
	}
	cancel()
	c.keepAliveWG.Wait()
	c.keepAliveCancel = nil
}

func (c *Client) runKeepAlive(ctx context.Context) {
	c.performKeepAlive(ctx)

	ticker := time.NewTicker(c.keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.performKeepAlive(ctx)
		}
	}
}

func (c *Client) performKeepAlive(parent context.Context) {
	ctx := parent
	var cancel context.CancelFunc
	if c.keepAliveTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, c.keepAliveTimeout)
		defer cancel()
	}

	token, err := c.tokens.Token(ctx)
	if err != nil || token == "" {
		return
	}

	if err := c.sendKeepAlive(ctx, token); err != nil && c.logger != nil {
		c.logger.Debug("session keep-alive failed", "error", err)
	}
}

func (c *Client) sendKeepAlive(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.clientBaseURL+"/v1/auth/session", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return apiErrorFromStatus(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
