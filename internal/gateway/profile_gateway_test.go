package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDoctor_ReturnsProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/doctors/doc-1", r.URL.Path)
		w.Write([]byte(`{"id":"doc-1","fullName":"Dr. Asha Rao","specialization":"Cardiology","phone":"+91-9000000010"}`))
	}))
	defer server.Close()

	g := NewHTTPProfileGateway(testServicesConfig(server.URL), quietLogger())
	doctor := g.GetDoctor(context.Background(), "doc-1")

	require.NotNil(t, doctor)
	assert.Equal(t, "Dr. Asha Rao", doctor.FullName)
	assert.Equal(t, "Cardiology", doctor.Specialization)
}

func TestGetPatient_ReturnsProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/patients/pat-1", r.URL.Path)
		w.Write([]byte(`{"id":"pat-1","fullName":"Ravi Kumar","phone":"+91-9000000001"}`))
	}))
	defer server.Close()

	g := NewHTTPProfileGateway(testServicesConfig(server.URL), quietLogger())
	patient := g.GetPatient(context.Background(), "pat-1")

	require.NotNil(t, patient)
	assert.Equal(t, "+91-9000000001", patient.Phone)
}

func TestProfileLookup_NilOnAnyFailure(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such doctor", http.StatusNotFound)
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"garbage body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		},
		"empty id": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"fullName":"Dr. Nobody"}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			g := NewHTTPProfileGateway(testServicesConfig(server.URL), quietLogger())
			assert.Nil(t, g.GetDoctor(context.Background(), "doc-1"))
			assert.Nil(t, g.GetPatient(context.Background(), "pat-1"))
		})
	}
}

func TestProfileLookup_NilWhenUnreachable(t *testing.T) {
	g := NewHTTPProfileGateway(testServicesConfig("http://127.0.0.1:1"), quietLogger())
	assert.Nil(t, g.GetDoctor(context.Background(), "doc-1"))
	assert.Nil(t, g.GetPatient(context.Background(), "pat-1"))
}
