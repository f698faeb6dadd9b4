package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

// RequestSigner decorates an outbound request with whatever per-request
// headers a platform's anti-bot layer expects. The checksum scheme below is
// reverse-engineered and fragile, so it lives behind this interface and can
// be swapped or removed without touching the client.
type RequestSigner interface {
	Sign(req *http.Request, accessToken string)
}

type checksumSigner struct {
	deviceID string
}

func NewChecksumSigner(deviceID string) RequestSigner {
	return &checksumSigner{deviceID: deviceID}
}

func (s *checksumSigner) Sign(req *http.Request, accessToken string) {
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())

	digest := sha256.Sum256([]byte(req.URL.Path + "_" + ts + "_" + s.deviceID + "_" + accessToken))

	req.Header.Set("Authorization", accessToken)
	req.Header.Set("fansly-client-ts", ts)
	req.Header.Set("fansly-client-id", s.deviceID)
	req.Header.Set("fansly-client-check", hex.EncodeToString(digest[:16]))
}

// noopSigner is the replacement strategy when the upstream scheme breaks:
// plain token auth, nothing else.
type noopSigner struct{}

func NewNoopSigner() RequestSigner {
	return noopSigner{}
}

func (noopSigner) Sign(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", accessToken)
}
