package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/loykin/hubspotrun/internal/handler"
	"github.com/loykin/hubspotrun/pkg/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestStub_TicketCreate(t *testing.T) {
	var exec handler.Executor = handler.Stub{}
	in := fixture.TicketCreate()

	first, err := exec.Execute(context.Background(), in)
	require.NoError(t, err)
	second, err := exec.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, first.ResponseCode)
	assert.Equal(t, first, second, "stub must be deterministic")

	id := gjson.Get(first.ResponseBody, "id").String()
	assert.Equal(t, handler.StubID("POST", fixture.TicketsPath, in.Parameters.Body), id)
	assert.Equal(t, int64(0), gjson.Get(first.ResponseBody, "properties.hs_pipeline").Int())
	assert.Equal(t, "test ticket from api", gjson.Get(first.ResponseBody, "properties.subject").String())
}

func TestStub_EchoesBodyWithoutProperties(t *testing.T) {
	in := fixture.TicketCreate()
	in.Parameters.Method = "PATCH"
	in.Parameters.Body = `{"archived":true}`

	res, err := handler.Stub{}.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.ResponseCode)
	assert.Equal(t, in.Parameters.Body, res.ResponseBody)
}

func TestStub_InvalidFixture(t *testing.T) {
	in := fixture.TicketCreate()
	in.Parameters.Body = `[1,2]`
	res, err := handler.Stub{}.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, res.HandlerErrorMessage)
}

func TestStubID_DependsOnInput(t *testing.T) {
	assert.NotEqual(t, handler.StubID("POST", "/a", "{}"), handler.StubID("POST", "/b", "{}"))
}
