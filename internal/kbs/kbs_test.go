package kbs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPEnclaveClientSuccess(t *testing.T) {
	masterKey := make([]byte, 32)
	for i := range masterKey {
		masterKey[i] = byte(i)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "u" || pass != "p" {
			t.Errorf("bad basic auth: %q %q", user, pass)
		}
		json.NewEncoder(w).Encode(restoreResponse{
			Status:    "ok",
			MasterKey: base64.StdEncoding.EncodeToString(masterKey),
		})
	}))
	defer srv.Close()

	client := NewHTTPEnclaveClient(srv.URL, "kbs-service", nil)
	helper := NewHelper(client)

	key, token, err := helper.DeriveRegistrationLock(context.Background(), Credentials{Username: "u", Password: "p"}, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if len(key) != 32 {
		t.Fatalf("master key length: got %d", len(key))
	}
	if token == "" {
		t.Fatal("expected non-empty registration lock token")
	}
}

func TestHTTPEnclaveClientWrongPin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(restoreResponse{Status: "wrong_pin", TriesRemaining: 4})
	}))
	defer srv.Close()

	client := NewHTTPEnclaveClient(srv.URL, "kbs-service", nil)
	helper := NewHelper(client)

	_, _, err := helper.DeriveRegistrationLock(context.Background(), Credentials{Username: "u", Password: "p"}, "0000")
	pinErr, ok := err.(PinError)
	if !ok {
		t.Fatalf("expected PinError, got %v (%T)", err, err)
	}
	if pinErr.TriesRemaining != 4 {
		t.Fatalf("triesRemaining: got %d, want 4", pinErr.TriesRemaining)
	}
}

func TestHTTPEnclaveClientNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(restoreResponse{Status: "no_data"})
	}))
	defer srv.Close()

	client := NewHTTPEnclaveClient(srv.URL, "kbs-service", nil)
	helper := NewHelper(client)

	_, _, err := helper.DeriveRegistrationLock(context.Background(), Credentials{Username: "u", Password: "p"}, "0000")
	if _, ok := err.(NoDataError); !ok {
		t.Fatalf("expected NoDataError, got %v (%T)", err, err)
	}
}
