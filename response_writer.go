package session

import (
	"bytes"
	"net/http"
)

// bufferedWriter captures the downstream handler's response so the
// middleware can still replace it wholesale when the final autosave fails,
// and so accumulated cookie mutations can be merged before any header is
// written to the wire.
type bufferedWriter struct {
	header  http.Header
	body    bytes.Buffer
	status  int
	written bool
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header)}
}

func (w *bufferedWriter) Header() http.Header {
	return w.header
}

func (w *bufferedWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

// flush replays the captured response onto the real writer. Headers are
// added rather than set so cookies already merged onto w survive.
func (w *bufferedWriter) flush(dst http.ResponseWriter) {
	for key, values := range w.header {
		for _, v := range values {
			dst.Header().Add(key, v)
		}
	}

	status := w.status
	if !w.written {
		status = http.StatusOK
	}
	dst.WriteHeader(status)
	_, _ = dst.Write(w.body.Bytes())
}
