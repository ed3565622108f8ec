package quota

import "net/http"

var _ http.RoundTripper = &RoundTripper{}

// RoundTripper feeds every response through a Tracker before handing it to the caller.
// Transport errors produce no response and are not recorded.
type RoundTripper struct {
	Tracker *Tracker
	Next    http.RoundTripper
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.Next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	r.Tracker.RecordResponse(resp.Header.Get("Date"), resp.StatusCode >= 200 && resp.StatusCode < 300)
	return resp, nil
}
