package response

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"starsystem-server/internal/shared/errors"
)

func TestErrorStatusCodes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		err  error
		want int
	}{
		{errors.NotFoundf("no body"), http.StatusNotFound},
		{errors.Validation("bad"), http.StatusBadRequest},
		{errors.Conflictf("position already taken"), http.StatusConflict},
		{errors.CapacityExceededf("full"), http.StatusUnprocessableEntity},
		{errors.DegenerateSystem("zero mass"), http.StatusUnprocessableEntity},
		{errors.Unauthorized("no token"), http.StatusUnauthorized},
		{errors.Forbidden("not yours"), http.StatusForbidden},
		{errors.MethodNotAllowed(http.MethodPatch), http.StatusMethodNotAllowed},
		{errors.RateLimited("slow down"), http.StatusTooManyRequests},
		{errors.WrapExternal("redis down", fmt.Errorf("dial")), http.StatusServiceUnavailable},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), logger, tt.err)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.want || body.Error != string(errors.GetType(tt.err)) {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
