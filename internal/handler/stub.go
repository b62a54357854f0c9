package handler

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net/http"
	"strconv"

	"github.com/loykin/hubspotrun/pkg/fixture"
)

// Stub is an Executor that performs no network I/O. It answers with a
// deterministic response so fixtures can be exercised offline.
type Stub struct{}

// StubID derives the object id the stub reports for a request.
func StubID(method, path, body string) string {
	sum := sha256.Sum256([]byte(method + "\n" + path + "\n" + body))
	return strconv.FormatUint(binary.BigEndian.Uint64(sum[:8])%1_000_000_000_000, 10)
}

// Execute returns 201 for POST and 200 for any other verb. When the body has
// a "properties" object the response is {"id":...,"properties":...};
// otherwise the body is echoed unchanged.
func (Stub) Execute(_ context.Context, in fixture.Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return applyPolicy(in.Parameters, Result{}, &Error{Kind: ErrInvalidInput, Message: err.Error(), Err: err})
	}
	method := in.Parameters.NormalizedMethod()
	code := http.StatusOK
	if method == http.MethodPost {
		code = http.StatusCreated
	}

	res := Result{ResponseCode: code, ResponseBody: in.Parameters.Body}
	if in.Parameters.HasBody() {
		obj, _ := in.Parameters.BodyObject()
		if props := obj.Get("properties"); props.IsObject() {
			id := StubID(method, in.Parameters.Path, in.Parameters.Body)
			res.ResponseBody = fmt.Sprintf(`{"id":%q,"properties":%s}`, id, props.Raw)
		}
	}
	return res, nil
}
