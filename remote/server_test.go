package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forthic-lang/forthic"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestBridge(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	srv := NewServer(forthic.NewStandardInterpreter())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, NewClient(ts.URL, 5*time.Second)
}

func TestExecuteWord(t *testing.T) {
	_, client := newTestBridge(t)

	out, err := client.ExecuteWord(context.Background(), "DUP", []forthic.Value{forthic.Int(5)})
	if err != nil {
		t.Fatalf("ExecuteWord error: %v", err)
	}
	want := []forthic.Value{forthic.Int(5), forthic.Int(5)}
	if len(out) != 2 || !forthic.DeepEqual(out[0], want[0]) || !forthic.DeepEqual(out[1], want[1]) {
		t.Fatalf("got stack %v, want %v", out, want)
	}
}

func TestExecuteWordLiteral(t *testing.T) {
	_, client := newTestBridge(t)

	out, err := client.ExecuteWord(context.Background(), "7", nil)
	if err != nil {
		t.Fatalf("ExecuteWord error: %v", err)
	}
	if len(out) != 1 || !forthic.DeepEqual(out[0], forthic.Int(7)) {
		t.Fatalf("got stack %v, want [7]", out)
	}
}

func TestExecuteSequence(t *testing.T) {
	_, client := newTestBridge(t)

	out, err := client.ExecuteSequence(context.Background(),
		[]string{"DUP", "+"}, []forthic.Value{forthic.Int(5)})
	if err != nil {
		t.Fatalf("ExecuteSequence error: %v", err)
	}
	if len(out) != 1 || !forthic.DeepEqual(out[0], forthic.Int(10)) {
		t.Fatalf("got stack %v, want [10]", out)
	}
}

func TestExecuteSequenceFailFast(t *testing.T) {
	_, client := newTestBridge(t)

	_, err := client.ExecuteSequence(context.Background(),
		[]string{"DUP", "NO-SUCH-WORD", "DUP"}, []forthic.Value{forthic.Int(1)})
	var remoteErr *RemoteExecutionError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteExecutionError, got %v", err)
	}
	if remoteErr.Info.ErrorType != "UnknownWordError" {
		t.Fatalf("error_type = %q, want UnknownWordError", remoteErr.Info.ErrorType)
	}
	if remoteErr.Info.Runtime != "go" {
		t.Fatalf("runtime = %q, want go", remoteErr.Info.Runtime)
	}
	if remoteErr.Info.Context["word"] != "NO-SUCH-WORD" {
		t.Fatalf("context = %v, want word=NO-SUCH-WORD", remoteErr.Info.Context)
	}
}

func TestRequestsAreIsolated(t *testing.T) {
	_, client := newTestBridge(t)

	if _, err := client.ExecuteWord(context.Background(), "3", nil); err != nil {
		t.Fatalf("first request error: %v", err)
	}
	out, err := client.ExecuteWord(context.Background(), "4", nil)
	if err != nil {
		t.Fatalf("second request error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("second request saw stack %v, want just [4]", out)
	}
}

func TestListModules(t *testing.T) {
	_, client := newTestBridge(t)

	modules, err := client.ListModules(context.Background())
	if err != nil {
		t.Fatalf("ListModules error: %v", err)
	}
	byName := map[string]ModuleSummary{}
	for _, m := range modules {
		byName[m.Name] = m
	}
	for _, name := range forthic.StandardModuleNames {
		m, ok := byName[name]
		if !ok {
			t.Fatalf("module %s missing from listing", name)
		}
		if m.WordCount == 0 {
			t.Fatalf("module %s reported zero words", name)
		}
		if m.RuntimeSpecific {
			t.Fatalf("standard module %s marked runtime-specific", name)
		}
	}
}

func TestGetModuleInfo(t *testing.T) {
	_, client := newTestBridge(t)

	info, err := client.GetModuleInfo(context.Background(), "math")
	if err != nil {
		t.Fatalf("GetModuleInfo error: %v", err)
	}
	if info.Module.Name != "math" {
		t.Fatalf("module name = %q, want math", info.Module.Name)
	}
	var plus *WordInfo
	for i := range info.Words {
		if info.Words[i].Name == "+" {
			plus = &info.Words[i]
		}
	}
	if plus == nil {
		t.Fatal("math module info missing +")
	}
	if plus.StackEffect == "" {
		t.Fatal("+ has no stack effect")
	}
}

func TestGetModuleInfoNotFound(t *testing.T) {
	ts, _ := newTestBridge(t)

	resp, err := http.Get(ts.URL + "/rpc/modules/no-such-module")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRuntimeModuleRegistration(t *testing.T) {
	srv := NewServer(forthic.NewStandardInterpreter())
	echo := forthic.NewModule("echo")
	echo.AddExportedNative("ECHO-TWICE", "( s -- s' )",
		"Concatenate a string with itself.",
		func(_ *forthic.Interpreter, args []forthic.Value, _ *forthic.WordOptions) (*forthic.Value, error) {
			s, ok := args[0].Data.(string)
			if !ok {
				return nil, &forthic.WordTypeError{Word: "ECHO-TWICE", Want: "string", Got: args[0].Tag}
			}
			v := forthic.Str(s + s)
			return &v, nil
		})
	if err := srv.RegisterRuntimeModule(echo); err != nil {
		t.Fatalf("RegisterRuntimeModule error: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	client := NewClient(ts.URL, 5*time.Second)

	out, err := client.ExecuteWord(context.Background(), "ECHO-TWICE", []forthic.Value{forthic.Str("ab")})
	if err != nil {
		t.Fatalf("ExecuteWord error: %v", err)
	}
	if len(out) != 1 || !forthic.DeepEqual(out[0], forthic.Str("abab")) {
		t.Fatalf("got stack %v, want [abab]", out)
	}

	modules, err := client.ListModules(context.Background())
	if err != nil {
		t.Fatalf("ListModules error: %v", err)
	}
	found := false
	for _, m := range modules {
		if m.Name == "echo" {
			found = true
			if !m.RuntimeSpecific {
				t.Fatal("echo not marked runtime-specific")
			}
		}
	}
	if !found {
		t.Fatal("echo missing from listing")
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestBridge(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRemoteModuleProxy(t *testing.T) {
	_, client := newTestBridge(t)

	m, err := LoadRemoteModule(context.Background(), client, "string", 0)
	if err != nil {
		t.Fatalf("LoadRemoteModule error: %v", err)
	}

	ip := forthic.NewInterpreter()
	ip.RegisterModule(m)
	if err := ip.Run(`["string"] USE-MODULES "go forth" UPPERCASE`); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	top, err := ip.Pop()
	if err != nil {
		t.Fatalf("Pop error: %v", err)
	}
	if !forthic.DeepEqual(top, forthic.Str("GO FORTH")) {
		t.Fatalf("got %v, want GO FORTH", top)
	}
}
