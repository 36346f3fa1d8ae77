package intelinfotest

import (
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	intelinfo "github.com/intelinfo/intelinfo-go"
)

func postLogin(t *testing.T, url, username, password string) *http.Response {
	t.Helper()
	body := &strings.Builder{}
	w := multipart.NewWriter(body)
	w.WriteField("username", username)
	w.WriteField("password", password)
	w.Close()

	req, err := http.NewRequest(http.MethodPost, url+"/login", strings.NewReader(body.String()))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	return resp
}

func TestLoginChecksCredentials(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	resp := postLogin(t, srv.URL(), srv.Username, srv.Password)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid login status = %d, want 200", resp.StatusCode)
	}

	resp = postLogin(t, srv.URL(), srv.Username, "nope")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("invalid login status = %d, want 401", resp.StatusCode)
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	// Must not panic or block.
	srv.Broadcast(intelinfo.NewAnnouncementEvent(intelinfo.Announcement{ID: 1}))
	srv.BroadcastRaw([]byte("junk"))
	if srv.WaitForClients(1, 20*time.Millisecond) {
		t.Fatal("reported clients when none connected")
	}
}
