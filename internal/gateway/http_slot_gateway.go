package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/config"
	"github.com/sirupsen/logrus"
)

type httpSlotGateway struct {
	baseURL string
	client  *httpClient
	log     *logrus.Logger
}

// NewHTTPSlotGateway builds a SlotGateway backed by the doctor-service
// availability API.
func NewHTTPSlotGateway(cfg config.ServicesConfig, log *logrus.Logger) SlotGateway {
	return &httpSlotGateway{
		baseURL: cfg.DoctorBaseURL,
		client:  newHTTPClient(cfg, log),
		log:     log,
	}
}

type blockSlotsRequest struct {
	SlotIDs []string `json:"slotIds"`
	Blocked bool     `json:"blocked"`
}

// availabilitySlot mirrors the doctor-service slot representation. Every read
// of it is possibly stale; the doctor-service stays authoritative.
type availabilitySlot struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Mode            string `json:"mode"`
	DurationMinutes int    `json:"durationMinutes"`
	Blocked         bool   `json:"blocked"`
}

func (g *httpSlotGateway) ValidateAndLock(ctx context.Context, doctorID, slotID string, start time.Time, durationMinutes int) bool {
	if slotID != "" {
		return g.blockSlot(ctx, doctorID, slotID, true)
	}
	return g.findFreeSlot(ctx, doctorID, start, durationMinutes)
}

func (g *httpSlotGateway) Unlock(ctx context.Context, doctorID, slotID string) error {
	if slotID == "" {
		return nil
	}
	if ok := g.blockSlot(ctx, doctorID, slotID, false); !ok {
		return fmt.Errorf("unblock slot %s for doctor %s failed", slotID, doctorID)
	}
	return nil
}

// blockSlot toggles the blocked flag on a single slot via the bulk block API.
// Success requires a 2xx response with a non-empty acknowledgment body.
func (g *httpSlotGateway) blockSlot(ctx context.Context, doctorID, slotID string, blocked bool) bool {
	target := fmt.Sprintf("%s/doctors/%s/availability/slots/block", g.baseURL, url.PathEscape(doctorID))

	body, err := json.Marshal(blockSlotsRequest{SlotIDs: []string{slotID}, Blocked: blocked})
	if err != nil {
		return false
	}

	status, respBody, err := g.client.do(ctx, http.MethodPut, target, body)
	if err != nil || status < 200 || status >= 300 || len(respBody) == 0 {
		g.log.Warnf("Slot block request failed: doctor=%s slot=%s blocked=%t status=%d err=%v",
			doctorID, slotID, blocked, status, err)
		return false
	}
	return true
}

// findFreeSlot fetches the doctor's slot list and looks for an unblocked
// entry matching the start time and duration exactly.
func (g *httpSlotGateway) findFreeSlot(ctx context.Context, doctorID string, start time.Time, durationMinutes int) bool {
	target := fmt.Sprintf("%s/doctors/%s/availability/slots", g.baseURL, url.PathEscape(doctorID))

	status, body, err := g.client.do(ctx, http.MethodGet, target, nil)
	if err != nil || status != http.StatusOK {
		g.log.Warnf("Slot list fetch failed for doctor %s: status=%d err=%v", doctorID, status, err)
		return false
	}

	var slots []availabilitySlot
	if err := json.Unmarshal(body, &slots); err != nil {
		g.log.Warnf("Slot list for doctor %s is not decodable: %v", doctorID, err)
		return false
	}

	for _, slot := range slots {
		if slot.Blocked || slot.DurationMinutes != durationMinutes {
			continue
		}
		slotStart, err := time.Parse(time.RFC3339, slot.StartTime)
		if err != nil {
			continue
		}
		if slotStart.Equal(start) {
			return true
		}
	}
	return false
}
