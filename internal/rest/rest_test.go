package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThingNotFound = errors.New("thing not found")

func TestFail(t *testing.T) {
	t.Run("should answer validation errors with 400", func(t *testing.T) {
		w := httptest.NewRecorder()

		Fail(w, fmt.Errorf("creating: %w", Invalid("name", "Name is required")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Name is required", body.Error)
		assert.Equal(t, "name", body.Details)
	})

	t.Run("should use the matching mapping for wrapped sentinels", func(t *testing.T) {
		w := httptest.NewRecorder()

		Fail(w, fmt.Errorf("loading: %w", errThingNotFound), Mapping{errThingNotFound, http.StatusNotFound})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should fall back to 500", func(t *testing.T) {
		w := httptest.NewRecorder()

		Fail(w, errors.New("boom"), Mapping{errThingNotFound, http.StatusNotFound})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("should not expose internal error text", func(t *testing.T) {
		// given
		w := httptest.NewRecorder()
		err := fmt.Errorf("could not query entries: %w", errors.New(`relation "budget_entry" does not exist`))

		// when
		Fail(w, err)

		// then
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "budget_entry")
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal error", body.Error)
		assert.Empty(t, body.Details)
	})
}

func TestDate_JSON(t *testing.T) {
	t.Run("should round trip a calendar day", func(t *testing.T) {
		d := NewDate(time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC))

		data, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2025-03-14"`, string(data))

		var parsed Date
		require.NoError(t, json.Unmarshal(data, &parsed))
		assert.True(t, parsed.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("should reject other layouts", func(t *testing.T) {
		var parsed Date
		err := json.Unmarshal([]byte(`"14/03/2025"`), &parsed)
		assert.Error(t, err)
	})

	t.Run("should treat null as absent", func(t *testing.T) {
		var payload struct {
			End *Date `json:"end"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"end":null}`), &payload))
		assert.Nil(t, payload.End.TimePtr())
	})
}

func TestQueryDate(t *testing.T) {
	fallback := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("should return the fallback when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)

		d, ok := QueryDate(w, r, "from", fallback)

		assert.True(t, ok)
		assert.Equal(t, fallback, d)
	})

	t.Run("should answer 400 on a bad date", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x?from=yesterday", nil)

		_, ok := QueryDate(w, r, "from", fallback)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
