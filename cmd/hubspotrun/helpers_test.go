package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/hubspotrun/internal/mockapi"
	"github.com/loykin/hubspotrun/pkg/fixture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const testKey = "pat-cli-test"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// setViper sets keys for one test and restores the previous values afterwards.
func setViper(t *testing.T, kv map[string]interface{}) {
	t.Helper()
	v := viper.GetViper()
	prev := map[string]interface{}{}
	for k, val := range kv {
		prev[k] = v.Get(k)
		v.Set(k, val)
	}
	t.Cleanup(func() {
		for k, val := range prev {
			v.Set(k, val)
		}
	})
}

func mockServer(t *testing.T) (*mockapi.Server, string) {
	t.Helper()
	m := mockapi.New(mockapi.Options{APIKey: testKey})
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)
	return m, srv.URL
}

func writeFixture(t *testing.T, dir string, in fixture.Input) string {
	t.Helper()
	b, err := fixture.Marshal(in, fixture.FormatJSON)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return writeFile(t, dir, "fixture.json", string(b))
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.RunE(cmd, args)
	return out.String(), err
}
