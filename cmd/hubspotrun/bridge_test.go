package main

import (
	"encoding/json"
	"testing"

	"github.com/loykin/hubspotrun/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bridgeViper(t *testing.T, url string, extra map[string]interface{}) {
	t.Helper()
	kv := map[string]interface{}{
		"config":       "",
		"api_key":      testKey,
		"api_location": url,
		"structure":    "Tickets",
		"query":        "",
		"fields":       []string{},
		"params":       map[string]string{},
		"page":         "",
		"order":        "",
	}
	for k, v := range extra {
		kv[k] = v
	}
	setViper(t, kv)
}

func TestBridgeCountCmd(t *testing.T) {
	m, url := mockServer(t)
	m.Seed("tickets", map[string]interface{}{"subject": "a"})
	m.Seed("tickets", map[string]interface{}{"subject": "b"})
	bridgeViper(t, url, nil)

	out, err := run(t, bridgeCountCmd)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got["count"])
}

func TestBridgeRetrieveCmd(t *testing.T) {
	m, url := mockServer(t)
	m.Seed("tickets", map[string]interface{}{"subject": "printer jam"})
	bridgeViper(t, url, map[string]interface{}{
		"query":  `id=<%=parameter["Ticket"]%>`,
		"params": map[string]string{"Ticket": "1"},
		"fields": []string{"id", "$.properties.subject"},
	})

	out, err := run(t, bridgeRetrieveCmd)
	require.NoError(t, err)
	var got struct {
		Record map[string]interface{} `json:"record"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1", got.Record["id"])
	assert.Equal(t, "printer jam", got.Record["$.properties.subject"])
}

func TestBridgeSearchCmd(t *testing.T) {
	m, url := mockServer(t)
	for _, s := range []string{"b", "a", "c"} {
		m.Seed("tickets", map[string]interface{}{"subject": s})
	}
	bridgeViper(t, url, map[string]interface{}{
		"query":  `body={"limit":2}`,
		"fields": []string{"$.properties.subject"},
		"order":  "$.properties.subject:ASC",
	})

	out, err := run(t, bridgeSearchCmd)
	require.NoError(t, err)
	var got struct {
		Fields   []string            `json:"fields"`
		Records  []map[string]string `json:"records"`
		Metadata map[string]string   `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Records, 2)
	assert.Equal(t, "a", got.Records[0]["$.properties.subject"])
	assert.Equal(t, "b", got.Records[1]["$.properties.subject"])
	assert.Equal(t, "2", got.Metadata["next_page"])
}

func TestBridgeCmd_InvalidStructure(t *testing.T) {
	_, url := mockServer(t)
	bridgeViper(t, url, map[string]interface{}{"structure": "Deals"})
	_, err := run(t, bridgeCountCmd)
	assert.ErrorIs(t, err, bridge.ErrInvalidStructure)
}
