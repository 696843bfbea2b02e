package connection

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/output"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/buildinfo"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/logger"
)

// Download notifications.
const (
	NoticeAuthRequired = "⚠️ Authentication required. Please login again."
	NoticeDownloading  = "⏳ බාගත කරමින්... කරුණාකර රැඳී සිටින්න"
	NoticeDownloaded   = "✅ බාගත කරන ලදී!"
	noticeFailedPrefix = "❌ "
)

// DownloadPDF fetches a PDF report with the session token and hands it to
// the Saver under filename.
//
// Without a token the user is told to sign in and sent to the login
// location. Every other failure is notified and returned.
func (c *Client) DownloadPDF(ctx context.Context, url, filename string) error {
	token, ok := c.creds.Token()
	if !ok {
		c.notifier.Notify(NoticeAuthRequired)
		c.navigator.Navigate(c.loginLocation)
		return &ClientError{Code: CodeAuthRequired, Message: MsgAuthRequired}
	}

	c.notifier.Notify(NoticeDownloading)

	ctx, requestID := c.requestContext(ctx)
	if err := c.downloadPDF(ctx, url, filename, token, requestID); err != nil {
		logger.L(ctx).Error("pdf download failed", "url", url, "error", err)
		c.notifier.Notify(noticeFailedPrefix + err.Error())
		return err
	}

	c.notifier.Notify(NoticeDownloaded)
	return nil
}

func (c *Client) downloadPDF(ctx context.Context, url, filename, token, requestID string) error {
	if err := c.wait(ctx); err != nil {
		return transportError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(url), nil)
	if err != nil {
		return transportError(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/pdf")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("X-Request-ID", requestID)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(http.MethodGet, 0, c.now().Sub(start))
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		c.metrics.ObserveRequest(http.MethodGet, resp.StatusCode, c.now().Sub(start))
		return &ClientError{
			Code:    CodeDownload,
			Message: downloadErrorMessage(resp.StatusCode, string(text)),
			Status:  resp.StatusCode,
		}
	}

	progress := c.progress
	if progress == nil {
		progress = io.Discard
	}
	bar := output.NewProgressBar(progress, "Downloading "+filename)
	bar.SetTotal(resp.ContentLength)

	data, err := io.ReadAll(io.TeeReader(resp.Body, bar))
	c.metrics.ObserveRequest(http.MethodGet, resp.StatusCode, c.now().Sub(start))
	if err != nil {
		return transportError(err)
	}
	if c.progress != nil && len(data) > 0 {
		bar.Finish()
	}

	if len(data) == 0 {
		return &ClientError{Code: CodeEmptyDownload, Message: MsgEmptyDownload, Status: resp.StatusCode}
	}

	if err := c.saver.Save(filename, data); err != nil {
		return &ClientError{
			Code:    CodeDownload,
			Message: fmt.Sprintf("Could not save %s: %v", filename, err),
			Cause:   err,
		}
	}
	return nil
}

// downloadErrorMessage picks the user message for a failed download.
// Any non-null JSON body (even a bare number) goes through the
// message/error lookup; non-JSON text and a JSON null are matched against
// status codes.
func downloadErrorMessage(status int, text string) string {
	body := decodeBody(text)
	if text != "" && !body.IsRaw() && body.Value() != nil {
		if msg := body.firstText("message", "error"); msg != "" {
			return msg
		}
		return "Report download failed"
	}

	switch {
	case strings.Contains(text, "404"):
		return "Report not found. Make sure request is HR approved and vehicles assigned."
	case strings.Contains(text, "400"):
		return "Invalid date or request not ready for reports."
	case strings.Contains(text, "401"):
		return "Authentication failed. Please login again."
	default:
		return fmt.Sprintf("Error: %d - %s", status, truncate(text, 100))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
