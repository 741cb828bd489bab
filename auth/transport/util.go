package transport

import (
	"bytes"
	"io"
	"net/http"
)

// clone copies r so it can be replayed; the body is buffered when r does not
// provide GetBody.
func clone(r *http.Request) (*http.Request, error) {
	cloned := r.Clone(r.Context())
	if r.Body == nil || r.Body == http.NoBody {
		return cloned, nil
	}
	if r.GetBody == nil {
		buf, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		_ = r.Body.Close()
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
		r.Body, _ = r.GetBody()
	}
	body, err := r.GetBody()
	if err != nil {
		return nil, err
	}
	cloned.Body = body
	return cloned, nil
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
