// Network fallback: fetch the hashlink from its host and scrape the page.
//
// The host renders the document client-side, but its served page still
// carries usable body markup. Two quirks are handled. A "persistent
// storage" consent toast is dismissed and stripped. A nomodule script that
// sends browsers to a versioned path ("/v1/" + location.hash) triggers a
// single retry against that path.
package hashlink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	toastMarker    = `<div id="toast">`
	toastDismiss   = `<button onclick="dismiss()">I understand</button>`
	toastAutoClose = `<script>dismiss();</script>`
)

var (
	toastBlock     = regexp.MustCompile(`(?s)<div id="toast".*?</div>`)
	versionedRoute = regexp.MustCompile(`<script nomodule>\s*location\.href\s*=\s*"(/[^"]*)"\s*\+\s*location\.hash\s*</script>`)
	bodyBlock      = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
)

// fetchResult is what the fallback recovered and how.
type fetchResult struct {
	html       string
	redirected bool
}

// fallback runs the network strategy against hashlink.
func (d *Decoder) fallback(ctx context.Context, hashlink string) (*fetchResult, error) {
	if d.fetcher == nil {
		return nil, fmt.Errorf("%w: network fallback disabled", ErrNoConnectivity)
	}
	u, err := url.Parse(hashlink)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: not a fetchable url", ErrUnknownFormat)
	}

	page, err := d.get(ctx, hashlink)
	if err != nil {
		return nil, err
	}

	// The versioned route reads the document from the fragment; a link
	// without one is not retried.
	m := versionedRoute.FindStringSubmatch(page)
	_, fragment, hasFragment := strings.Cut(hashlink, "#")
	switch {
	case m != nil && !hasFragment:
		d.logger.Debug("fallback: versioned redirect skipped, no fragment", "link", shorten(hashlink))
	case m != nil:
		retry := versionedURL(u, m[1], fragment)
		d.logger.Info("fallback: versioned redirect", "link", shorten(hashlink), "retry", shorten(retry))
		if retried, rerr := d.get(ctx, retry); rerr != nil {
			d.logger.Warn("fallback: redirect retry failed", "link", shorten(hashlink), "err", rerr)
		} else if body, ok := extractBody(retried); ok {
			return &fetchResult{html: body, redirected: true}, nil
		} else {
			d.logger.Warn("fallback: no body in redirect response", "link", shorten(hashlink), "html", excerpt(retried))
		}
	}

	body, ok := extractBody(page)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBodyExtractionFailed, excerpt(page))
	}
	return &fetchResult{html: body}, nil
}

// get fetches url, checks the status, and dismisses the consent toast.
func (d *Decoder) get(ctx context.Context, target string) (string, error) {
	resp, err := d.fetcher.Fetch(ctx, target)
	if err != nil {
		if isTransportError(err) {
			return "", fmt.Errorf("%w: %w", ErrNoConnectivity, err)
		}
		return "", fmt.Errorf("%w: %w", ErrBodyExtractionFailed, err)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("%w: %d", ErrBadHTTPStatus, resp.StatusCode)
	}
	return dismissToast(string(resp.Body)), nil
}

// isTransportError reports whether err came from the connection rather
// than from the response.
func isTransportError(err error) bool {
	var uerr *url.Error
	return errors.As(err, &uerr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// dismissToast replaces the toast's dismiss button with a script that
// dismisses it, then removes the toast container.
func dismissToast(page string) string {
	if !strings.Contains(page, toastMarker) {
		return page
	}
	page = strings.ReplaceAll(page, toastDismiss, toastAutoClose)
	return toastBlock.ReplaceAllString(page, "")
}

// versionedURL rebuilds the hashlink under path with its fragment verbatim.
func versionedURL(u *url.URL, path, fragment string) string {
	return u.Scheme + "://" + u.Host + path + "#" + fragment
}

// extractBody returns the trimmed content between the body tags.
func extractBody(page string) (string, bool) {
	m := bodyBlock.FindStringSubmatch(page)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func excerpt(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
