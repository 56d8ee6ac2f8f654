package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-kitchen-sync/internal/app"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
)

// withHashing checks the HashSHA256 header of request bodies and signs every
// response body with the same key. It is a no-op when no hash key is set.
//
// The response is buffered so the signature can be sent as a header.
func (h *Handler) withHashing(next http.Handler) http.Handler {
	if !h.signer.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r).With().Str("func", "*Handler.withHashing").Logger()

		if r.Body != nil && r.Body != http.NoBody {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				log.Err(err).Msg("failed to read request body")
				http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
				return
			}
			r.Body.Close()

			if len(body) > 0 && !h.signer.Verify(body, r.Header.Get(utils.HashHeader)) {
				log.Err(ErrBodyHashMismatch).
					Str("hash from request", r.Header.Get(utils.HashHeader)).
					Msg("hashes are not equal")
				http.Error(w, app.MsgIntegrityCheckFailed, http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		sw := &signingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		if err := sw.flush(h.signer); err != nil {
			log.Err(err).Msg("failed to write signed response")
		}
	})
}

type signingResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *signingResponseWriter) WriteHeader(statusCode int) {
	if w.status == 0 {
		w.status = statusCode
	}
}

func (w *signingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *signingResponseWriter) flush(signer *utils.Signer) error {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.body.Len() > 0 {
		w.Header().Set(utils.HashHeader, signer.Sign(w.body.Bytes()))
	}

	w.ResponseWriter.WriteHeader(w.status)
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}
