package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/html"

	"github.com/umputun/viteadmin/pkg/config"
	"github.com/umputun/viteadmin/pkg/nonce"
	"github.com/umputun/viteadmin/pkg/repository"
	"github.com/umputun/viteadmin/pkg/service"
	"github.com/umputun/viteadmin/server/mocks"
)

const testPasswd = "passw0rd"

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		PageTitle:   "Vite Svelte Example",
		MenuTitle:   "Vite Svelte",
		MenuSlug:    "vite-svelte-example-admin",
		Capability:  "manage_options",
		OptionName:  "vite_svelte_display_text",
		DefaultText: "Default Text",
		ScriptURL:   "/assets/admin.js",
		AssetsPath:  "/assets",
	}
}

// testConfig makes a config mock with an administrator "admin", an editor "editor" and an editor "trusted"
// with manage_options granted, all sharing the same password
func testConfig(t *testing.T) *mocks.ConfigProviderMock {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPasswd), bcrypt.MinCost)
	require.NoError(t, err)
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) { return ":8080", 30 * time.Second },
		GetBaseURLFunc:      func() string { return "" },
		GetAdminConfigFunc:  testAdminConfig,
		GetUsersFunc: func() []config.UserConfig {
			return []config.UserConfig{
				{Login: "admin", PasswordHash: string(hash), Role: "administrator"},
				{Login: "editor", PasswordHash: string(hash), Role: "editor"},
				{Login: "trusted", PasswordHash: string(hash), Role: "editor", Capabilities: []string{"manage_options"}},
			}
		},
	}
}

func testServer(t *testing.T, cfg ConfigProvider, settings SettingsService) *Server {
	t.Helper()
	srv, err := New(cfg, settings, "test", false)
	require.NoError(t, err)
	return srv
}

// realServer makes a server backed by in-memory sqlite and a real token issuer
func realServer(t *testing.T) *Server {
	t.Helper()
	repos, err := repository.NewRepositories(context.Background(), repository.Config{DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	tokens, err := nonce.New("test-secret-0123456789", time.Hour, 100)
	require.NoError(t, err)

	admin := testAdminConfig()
	svc := service.NewDisplayTextService(repos.Setting, tokens, service.DisplayTextConfig{OptionName: admin.OptionName})
	return testServer(t, testConfig(t), svc)
}

func doRequest(t *testing.T, srv *Server, method, target, login string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if login != "" {
		req.SetBasicAuth(login, testPasswd)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

// bootData extracts the object assigned to window.viteSvelteAdminData and checks it precedes the bundle script
func bootData(t *testing.T, page string) adminData {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	var scripts []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			scripts = append(scripts, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.Len(t, scripts, 2, "inline data script and bundle script")
	require.NotNil(t, scripts[0].FirstChild)
	assert.Equal(t, "/assets/admin.js", attr(scripts[1], "src"))
	assert.Equal(t, "module", attr(scripts[1], "type"))

	js := strings.TrimSpace(scripts[0].FirstChild.Data)
	require.True(t, strings.HasPrefix(js, "window.viteSvelteAdminData ="), js)
	js = strings.TrimSuffix(strings.TrimPrefix(js, "window.viteSvelteAdminData ="), ";")

	var res adminData
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(js)), &res))
	return res
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func saveForm(t *testing.T, srv *Server, login string, form url.Values) (int, ajaxResponse) {
	t.Helper()
	w := doRequest(t, srv, http.MethodPost, "/wp-admin/admin-ajax.php", login,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	var resp ajaxResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestServer_New(t *testing.T) {
	srv, err := New(testConfig(t), &mocks.SettingsServiceMock{}, "1.0.0", false)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", srv.version)
	assert.False(t, srv.debug)
	assert.Contains(t, srv.ajaxActions, "vite_svelte_save_display_text")
}

func TestServer_NewBadAssetsDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.GetAdminConfigFunc = func() config.AdminConfig {
		res := testAdminConfig()
		res.AssetsDir = "/no/such/dir"
		return res
	}
	_, err := New(cfg, &mocks.SettingsServiceMock{}, "1.0.0", false)
	require.Error(t, err)
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	cfg := testConfig(t)
	cfg.GetServerConfigFunc = func() (string, time.Duration) {
		return fmt.Sprintf("127.0.0.1:%d", port), 30 * time.Second
	}
	srv := testServer(t, cfg, &mocks.SettingsServiceMock{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// wait for server to start
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server didn't stop")
	}
}

func TestServer_RootRedirect(t *testing.T) {
	srv := testServer(t, testConfig(t), &mocks.SettingsServiceMock{})
	w := doRequest(t, srv, http.MethodGet, "/", "", http.NoBody, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/wp-admin/", w.Header().Get("Location"))
}

func TestServer_statusHandler(t *testing.T) {
	srv := testServer(t, testConfig(t), &mocks.SettingsServiceMock{})

	w := doRequest(t, srv, http.MethodGet, "/api/v1/status", "", http.NoBody, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var status map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
	assert.NotEmpty(t, status["time"])
}

func TestServer_Assets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "admin.js"), []byte("console.log('admin')"), 0o600))

	cfg := testConfig(t)
	cfg.GetAdminConfigFunc = func() config.AdminConfig {
		res := testAdminConfig()
		res.AssetsDir = dir
		return res
	}
	srv := testServer(t, cfg, &mocks.SettingsServiceMock{})

	w := doRequest(t, srv, http.MethodGet, "/assets/admin.js", "", http.NoBody, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log('admin')", w.Body.String())
}

func TestServer_EndToEnd(t *testing.T) {
	srv := realServer(t)

	// first render shows the default value and a token
	w := doRequest(t, srv, http.MethodGet, "/wp-admin/admin.php?page=vite-svelte-example-admin", "admin", http.NoBody, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := bootData(t, w.Body.String())
	assert.Equal(t, "Default Text", data.SavedText)
	assert.Equal(t, "/wp-admin/admin-ajax.php", data.AjaxURL)
	require.NotEmpty(t, data.Nonce)

	form := url.Values{"action": {"vite_svelte_save_display_text"}, "nonce": {data.Nonce}}

	t.Run("missing field leaves value unchanged", func(t *testing.T) {
		code, resp := saveForm(t, srv, "admin", form)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, ajaxResponse{Message: "Missing display text."}, resp)
	})

	t.Run("save sanitized value", func(t *testing.T) {
		f := url.Values{"displayText": {"  Hello <b>World</b><script>alert(1)</script> "}}
		for k, v := range form {
			f[k] = v
		}
		code, resp := saveForm(t, srv, "admin", f)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, ajaxResponse{Success: true, Message: "Display text saved successfully."}, resp)

		code, resp = saveForm(t, srv, "admin", f)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, ajaxResponse{Success: true, Message: "Display text is already set to this value."}, resp)
	})

	t.Run("token of another user rejected", func(t *testing.T) {
		f := url.Values{"displayText": {"other"}}
		for k, v := range form {
			f[k] = v
		}
		code, resp := saveForm(t, srv, "trusted", f)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, ajaxResponse{Message: "Nonce verification failed."}, resp)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		f := url.Values{"displayText": {"other"}}
		for k, v := range form {
			f[k] = v
		}
		code, resp := saveForm(t, srv, "", f)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, ajaxResponse{Message: "Nonce verification failed."}, resp)
	})

	// next render reflects the saved value and rotates the token
	w = doRequest(t, srv, http.MethodGet, "/wp-admin/admin.php?page=vite-svelte-example-admin", "admin", http.NoBody, "")
	require.Equal(t, http.StatusOK, w.Code)
	next := bootData(t, w.Body.String())
	assert.Equal(t, "Hello World", next.SavedText)
	assert.NotEqual(t, data.Nonce, next.Nonce)

	t.Run("stale token rejected", func(t *testing.T) {
		f := url.Values{"displayText": {"stale"}}
		for k, v := range form {
			f[k] = v
		}
		code, _ := saveForm(t, srv, "admin", f)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("admin data endpoint", func(t *testing.T) {
		w := doRequest(t, srv, http.MethodGet, "/api/v1/admin-data", "admin", http.NoBody, "")
		require.Equal(t, http.StatusOK, w.Code)
		var res adminData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "Hello World", res.SavedText)
		assert.NotEmpty(t, res.Nonce)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})
}
