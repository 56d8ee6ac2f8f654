package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

const (
	syncPath      = "/api/sync/{collection}"
	traceIDHeader = "X-Trace-ID"
)

type httpRemoteSource struct {
	client *resty.Client
	signer *utils.Signer
	token  string

	logger *logger.Logger
}

// NewHTTPRemoteSource constructs the HTTP/REST implementation of
// [RemoteSource]. It normalises the base URL from adapterCfg.HTTPAddress and
// sets the request timeout on the underlying resty client. Request bodies are
// signed and response bodies verified with appCfg.HashKey when it is set.
func NewHTTPRemoteSource(adapterCfg config.Adapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteSource, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout).
		SetHeader("Accept", "application/json")

	return &httpRemoteSource{
		client: client,
		signer: utils.NewSigner(appCfg.HashKey),
		token:  strings.TrimSpace(adapterCfg.Token),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchSnapshot implements [RemoteSource] with GET /api/sync/{collection}.
func (h *httpRemoteSource) FetchSnapshot(ctx context.Context, collection models.Collection) (models.SnapshotResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetPathParam("collection", collection.String()).
		Get(syncPath)
	if err != nil {
		return models.SnapshotResponse{}, mapTransportError("fetch snapshot request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SnapshotResponse{}, err
	}
	if err = h.verify(resp); err != nil {
		return models.SnapshotResponse{}, err
	}

	var snapshot models.SnapshotResponse
	if err = json.Unmarshal(resp.Body(), &snapshot); err != nil {
		return models.SnapshotResponse{}, fmt.Errorf("%w: decode snapshot: %w", ErrInvalidResponse, err)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "httpRemoteSource.FetchSnapshot").
		Str("collection", collection.String()).
		Int("count", len(snapshot.Entities)).
		Msg("snapshot fetched")

	return snapshot, nil
}

// Push implements [RemoteSource] with POST /api/sync/{collection}. The body
// is signed into the HashSHA256 header.
func (h *httpRemoteSource) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	req.Length = req.Size()

	body, err := json.Marshal(req)
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("encode push request: %w", err)
	}

	r := h.authedRequest(ctx).
		SetPathParam("collection", req.Collection.String()).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if h.signer.Enabled() {
		r.SetHeader(utils.HashHeader, h.signer.Sign(body))
	}

	resp, err := r.Post(syncPath)
	if err != nil {
		return models.PushResponse{}, mapTransportError("push request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PushResponse{}, err
	}
	if err = h.verify(resp); err != nil {
		return models.PushResponse{}, err
	}

	var pushed models.PushResponse
	if err = json.Unmarshal(resp.Body(), &pushed); err != nil {
		return models.PushResponse{}, fmt.Errorf("%w: decode push response: %w", ErrInvalidResponse, err)
	}

	return pushed, nil
}

func (h *httpRemoteSource) Close() error {
	h.client.GetClient().CloseIdleConnections()
	return nil
}

func (h *httpRemoteSource) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetAuthToken(h.token)
	}
	if traceID := utils.GetTraceIDFromContext(ctx); traceID != "" {
		req.SetHeader(traceIDHeader, traceID)
	}
	return req
}

// verify checks the response signature when the server sent one.
func (h *httpRemoteSource) verify(resp *resty.Response) error {
	signature := resp.Header().Get(utils.HashHeader)
	if signature == "" || h.signer.Verify(resp.Body(), signature) {
		return nil
	}
	return fmt.Errorf("%w: body hash mismatch", ErrInvalidResponse)
}
