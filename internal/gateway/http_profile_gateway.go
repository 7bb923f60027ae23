package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Abhishek-Anvekar/healthcare/config"
	"github.com/sirupsen/logrus"
)

type httpProfileGateway struct {
	doctorBaseURL  string
	patientBaseURL string
	client         *httpClient
	log            *logrus.Logger
}

// NewHTTPProfileGateway builds a ProfileGateway backed by the doctor-service
// and patient-service REST APIs.
func NewHTTPProfileGateway(cfg config.ServicesConfig, log *logrus.Logger) ProfileGateway {
	return &httpProfileGateway{
		doctorBaseURL:  cfg.DoctorBaseURL,
		patientBaseURL: cfg.PatientBaseURL,
		client:         newHTTPClient(cfg, log),
		log:            log,
	}
}

func (g *httpProfileGateway) GetDoctor(ctx context.Context, doctorID string) *DoctorProfile {
	target := fmt.Sprintf("%s/doctors/%s", g.doctorBaseURL, url.PathEscape(doctorID))

	status, body, err := g.client.do(ctx, http.MethodGet, target, nil)
	if err != nil || status != http.StatusOK {
		g.log.Warnf("Doctor lookup failed for %s: status=%d err=%v", doctorID, status, err)
		return nil
	}

	var profile DoctorProfile
	if err := json.Unmarshal(body, &profile); err != nil || profile.ID == "" {
		g.log.Warnf("Doctor lookup returned unusable profile for %s: %v", doctorID, err)
		return nil
	}
	return &profile
}

func (g *httpProfileGateway) GetPatient(ctx context.Context, patientID string) *PatientProfile {
	target := fmt.Sprintf("%s/patients/%s", g.patientBaseURL, url.PathEscape(patientID))

	status, body, err := g.client.do(ctx, http.MethodGet, target, nil)
	if err != nil || status != http.StatusOK {
		g.log.Warnf("Patient lookup failed for %s: status=%d err=%v", patientID, status, err)
		return nil
	}

	var profile PatientProfile
	if err := json.Unmarshal(body, &profile); err != nil || profile.ID == "" {
		g.log.Warnf("Patient lookup returned unusable profile for %s: %v", patientID, err)
		return nil
	}
	return &profile
}
